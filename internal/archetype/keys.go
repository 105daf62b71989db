// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package archetype classifies users into play archetypes from their
// public badge, group and account-age signals.
//
// The eight archetypes form a closed vocabulary. Scoring is deterministic:
// identical signal bundles always produce identical score vectors, and
// ties resolve by the canonical key order below.
package archetype

// Key identifies one play archetype.
type Key string

// The archetype vocabulary. Keys lists them in canonical order, which is
// also the tie-break order for primary/secondary selection.
const (
	Explorer   Key = "explorer"
	Grinder    Key = "grinder"
	Socializer Key = "socializer"
	Competitor Key = "competitor"
	Builder    Key = "builder"
	Trader     Key = "trader"
	Roleplayer Key = "roleplayer"
	Casual     Key = "casual"
)

// Keys is the canonical ordering of all archetypes.
var Keys = []Key{
	Explorer,
	Grinder,
	Socializer,
	Competitor,
	Builder,
	Trader,
	Roleplayer,
	Casual,
}

// Valid reports whether k is a known archetype.
func Valid(k Key) bool {
	for _, key := range Keys {
		if key == k {
			return true
		}
	}
	return false
}

// reasons are the display strings attached to recommendations, keyed by
// the user's primary archetype.
var reasons = map[Key]string{
	Explorer:   "Great for discovering new adventures",
	Grinder:    "Perfect for long-term progression",
	Socializer: "Ideal for meeting new friends",
	Competitor: "Challenge yourself against others",
	Builder:    "Express your creativity",
	Trader:     "Master the in-game economy",
	Roleplayer: "Immerse yourself in stories",
	Casual:     "Quick fun without commitment",
}

// ReasonFor returns the display reason for a primary archetype.
func ReasonFor(k Key) string {
	if reason, ok := reasons[k]; ok {
		return reason
	}
	return "Suggested for you"
}
