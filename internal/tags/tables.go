// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package tags derives the content tag vocabulary used by the scorer.
//
// Tagging is a pure function of item metadata: genre table lookups,
// ordered keyword rules over name and description, and two structural
// signals (server size, live player count). The same item always yields
// the same tags in the same order.
package tags

// genreTags maps the upstream genre label to baseline tags.
var genreTags = map[string][]string{
	"Adventure":     {"adventure", "exploration"},
	"Horror":        {"horror", "story"},
	"Survival":      {"survival", "adventure"},
	"RPG":           {"story", "quest", "adventure"},
	"Simulation":    {"simulator"},
	"Tycoon":        {"tycoon", "simulator", "business"},
	"Fighting":      {"pvp", "fighting", "combat"},
	"FPS":           {"fps", "shooter", "pvp"},
	"Sports":        {"sports", "competitive"},
	"Town and City": {"social", "life", "roleplay", "town"},
	"Comedy":        {"casual", "fun"},
	"Sci-Fi":        {"adventure", "story"},
	"Fantasy":       {"story", "roleplay", "adventure"},
	"Naval":         {"adventure", "pvp"},
	"Military":      {"pvp", "shooter", "battle"},
	"Building":      {"build", "sandbox", "creative"},
	"Medieval":      {"roleplay", "story", "pvp"},
	"All Genres":    {},
}

// keywordRule emits tag when any of its keywords occurs in the item text.
// At most one emission per rule regardless of how many keywords match.
type keywordRule struct {
	keywords []string
	tag      string
}

// keywordRules are evaluated in declaration order, which fixes the tag
// insertion order for identical inputs.
var keywordRules = []keywordRule{
	{[]string{"simulator", "sim"}, "simulator"},
	{[]string{"tycoon"}, "tycoon"},
	{[]string{"idle", "afk"}, "idle"},
	{[]string{"obby", "obstacle"}, "obby"},
	{[]string{"parkour"}, "parkour"},
	{[]string{"roleplay", " rp ", " rp"}, "roleplay"},
	{[]string{"pvp"}, "pvp"},
	{[]string{"fps", "shooter", "gun"}, "fps"},
	{[]string{"trade", "trading"}, "trade"},
	{[]string{"build", "building", "construct"}, "build"},
	{[]string{"sandbox"}, "sandbox"},
	{[]string{"survival"}, "survival"},
	{[]string{"horror", "scary"}, "horror"},
	{[]string{"adventure", "quest"}, "adventure"},
	{[]string{"hangout", "chill"}, "hangout"},
	{[]string{"battle", "war", "fight"}, "battle"},
	{[]string{"arena"}, "arena"},
	{[]string{"escape"}, "escape"},
	{[]string{"tower"}, "tower"},
	{[]string{"race", "racing"}, "race"},
	{[]string{"life", "town", "city"}, "life"},
	{[]string{"story", "mystery"}, "story"},
	{[]string{"school", "hospital", "cafe", "restaurant"}, "social"},
	{[]string{"family", "adopt"}, "family"},
	{[]string{"upgrade", "rebirth", "prestige"}, "upgrade"},
	{[]string{"grind", "farm"}, "grind"},
	{[]string{"minigame", "mini game"}, "minigame"},
	{[]string{"easy", "casual", "simple"}, "casual"},
	{[]string{"ranked", "competitive"}, "ranked"},
}

// Structural thresholds.
const (
	// socialMaxPlayers marks large-server games as social venues.
	socialMaxPlayers = 50

	// popularPlaying marks games with a large live player count.
	popularPlaying = 10_000
)
