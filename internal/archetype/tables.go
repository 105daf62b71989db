// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package archetype

// TagAffinity describes how an archetype relates to content tags.
// Want tags raise the match score; Avoid tags lower it. The Want list
// doubles as the keyword vocabulary for profiling badge and group names.
type TagAffinity struct {
	Want  []string
	Avoid []string
}

// Affinities maps each archetype to its tag affinity. This single table
// drives both user profiling (keyword matching against badge and group
// text) and content scoring (tag overlap).
var Affinities = map[Key]TagAffinity{
	Explorer: {
		Want:  []string{"adventure", "openworld", "exploration", "story", "quest", "horror", "survival", "mystery"},
		Avoid: []string{"idle", "afk", "simulator"},
	},
	Grinder: {
		Want:  []string{"simulator", "tycoon", "idle", "upgrade", "farm", "grind", "incremental", "rebirth"},
		Avoid: []string{"pvp", "competitive"},
	},
	Socializer: {
		Want:  []string{"social", "hangout", "party", "cafe", "roleplay", "town", "life", "friends"},
		Avoid: []string{"pvp", "shooter", "fps"},
	},
	Competitor: {
		Want:  []string{"pvp", "fps", "shooter", "arena", "ranked", "battle", "fighting", "combat", "war"},
		Avoid: []string{"idle", "afk", "hangout"},
	},
	Builder: {
		Want:  []string{"build", "sandbox", "create", "design", "craft", "construct", "creative", "architect"},
		Avoid: []string{"pvp", "shooter"},
	},
	Trader: {
		Want:  []string{"trade", "trading", "market", "economy", "shop", "business", "tycoon", "money"},
		Avoid: []string{"obby", "parkour"},
	},
	Roleplayer: {
		Want:  []string{"roleplay", "rp", "life", "story", "family", "school", "hospital", "brookhaven", "bloxburg"},
		Avoid: []string{"simulator", "idle", "pvp"},
	},
	Casual: {
		Want:  []string{"obby", "minigame", "casual", "easy", "parkour", "escape", "tower", "race", "fun"},
		Avoid: []string{"grind", "competitive", "ranked"},
	},
}
