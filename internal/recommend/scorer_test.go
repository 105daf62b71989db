// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/robprofile/robprofile/internal/archetype"
	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/models"
)

func testRecommendConfig() config.RecommendConfig {
	return config.RecommendConfig{
		MatchWeight:            0.55,
		PopularityWeight:       0.30,
		FreshnessWeight:        0.15,
		WantTagBonus:           0.3,
		AvoidTagPenalty:        0.2,
		TopK:                   12,
		MatchedArchetypesLimit: 3,
		DetailLimit:            25,
	}
}

func TestScore_Bounds(t *testing.T) {
	s := NewScorer(testRecommendConfig())
	now := time.Now()

	items := []models.ContentItem{
		{},
		{Tags: []string{"pvp", "fps", "arena"}, Playing: 100_000, Visits: 2_000_000_000, Updated: now},
		{Tags: []string{"idle"}, Playing: 1, Visits: 1, Updated: now.AddDate(-3, 0, 0)},
	}
	userScores := map[archetype.Key]float64{archetype.Competitor: 0.9, archetype.Grinder: 0.1}

	for _, item := range items {
		score, _ := s.Score(item, userScores, now)
		if score < 0 || score > 100 {
			t.Errorf("score %d out of [0,100] for item %+v", score, item)
		}
	}
}

func TestScore_NoProfileReducesToPopularityAndFreshness(t *testing.T) {
	s := NewScorer(testRecommendConfig())
	now := time.Now()

	item := models.ContentItem{
		Tags:    []string{"adventure", "story"},
		Playing: 5000,
		Visits:  10_000_000,
		Updated: now.AddDate(0, 0, -3),
	}

	score, matched := s.Score(item, map[archetype.Key]float64{}, now)

	pop := popularityScore(item.Playing, item.Visits)
	fresh := freshnessScore(item.Updated, now)
	want := int(math.Round(100 * (0.30*pop + 0.15*fresh)))

	if score != want {
		t.Errorf("score = %d, want %d (match contribution must be zero)", score, want)
	}
	if matched != nil {
		t.Errorf("matched = %v, want nil without a profile", matched)
	}
}

func TestScore_WantTagsRaiseScore(t *testing.T) {
	s := NewScorer(testRecommendConfig())
	now := time.Now()
	userScores := map[archetype.Key]float64{archetype.Competitor: 1.0}

	base := models.ContentItem{Playing: 5000, Updated: now}
	pvp := base
	pvp.Tags = []string{"pvp", "arena", "ranked"}

	baseScore, _ := s.Score(base, userScores, now)
	pvpScore, matched := s.Score(pvp, userScores, now)

	if pvpScore <= baseScore {
		t.Errorf("want-tag item scored %d, base %d; want higher", pvpScore, baseScore)
	}
	if len(matched) != 1 || matched[0] != archetype.Competitor {
		t.Errorf("matched = %v, want [competitor]", matched)
	}
}

func TestScore_AvoidTagsLowerScore(t *testing.T) {
	s := NewScorer(testRecommendConfig())
	now := time.Now()
	userScores := map[archetype.Key]float64{archetype.Socializer: 1.0}

	neutral := models.ContentItem{Tags: []string{"social", "hangout"}, Playing: 5000, Updated: now}
	conflicted := models.ContentItem{Tags: []string{"social", "hangout", "pvp", "fps"}, Playing: 5000, Updated: now}

	neutralScore, _ := s.Score(neutral, userScores, now)
	conflictedScore, _ := s.Score(conflicted, userScores, now)

	if conflictedScore >= neutralScore {
		t.Errorf("avoid tags should lower score: %d vs %d", conflictedScore, neutralScore)
	}
}

func TestScore_MatchedArchetypesCapped(t *testing.T) {
	s := NewScorer(testRecommendConfig())
	now := time.Now()

	// Tags that hit want lists of many archetypes at once.
	item := models.ContentItem{
		Tags: []string{"adventure", "simulator", "social", "pvp", "build", "trade", "roleplay", "obby"},
	}
	userScores := map[archetype.Key]float64{}
	for _, key := range archetype.Keys {
		userScores[key] = 0.125
	}

	_, matched := s.Score(item, userScores, now)
	if len(matched) > 3 {
		t.Errorf("matched list %v exceeds cap of 3", matched)
	}
}

func TestScore_MatchedOrderedByAffinity(t *testing.T) {
	s := NewScorer(testRecommendConfig())
	now := time.Now()

	item := models.ContentItem{Tags: []string{"pvp", "social"}}
	userScores := map[archetype.Key]float64{
		archetype.Socializer: 0.7,
		archetype.Competitor: 0.3,
	}

	_, matched := s.Score(item, userScores, now)
	if len(matched) != 2 {
		t.Fatalf("matched = %v, want two entries", matched)
	}
	if matched[0] != archetype.Socializer {
		t.Errorf("matched[0] = %s, want socializer (strongest affinity first)", matched[0])
	}
}

func TestPopularityScore(t *testing.T) {
	tests := []struct {
		name    string
		playing int64
		visits  int64
		check   func(float64) bool
	}{
		{"both missing", 0, 0, func(v float64) bool { return v == 0.3 }},
		{"saturated signals", 10_000_000, 50_000_000_000, func(v float64) bool { return v > 0.8 && v <= 1.0 }},
		{"moderate", 5000, 10_000_000, func(v float64) bool { return v > 0.3 && v < 1.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := popularityScore(tt.playing, tt.visits)
			if !tt.check(got) {
				t.Errorf("popularityScore(%d, %d) = %v", tt.playing, tt.visits, got)
			}
		})
	}
}

func TestPopularityScore_Monotonic(t *testing.T) {
	prev := -1.0
	for _, playing := range []int64{500, 1000, 5000, 20_000, 100_000} {
		got := popularityScore(playing, 0)
		if got < prev {
			t.Errorf("popularity not monotonic: playing=%d gives %v after %v", playing, got, prev)
		}
		prev = got
	}
}

func TestFreshnessScore_Steps(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		daysAgo int
		want    float64
	}{
		{0, 1.0},
		{6, 1.0},
		{7, 0.85},
		{29, 0.85},
		{30, 0.7},
		{89, 0.7},
		{90, 0.5},
		{179, 0.5},
		{180, 0.3},
		{364, 0.3},
		{365, 0.2},
		{1000, 0.2},
	}

	for _, tt := range tests {
		updated := now.AddDate(0, 0, -tt.daysAgo)
		if got := freshnessScore(updated, now); got != tt.want {
			t.Errorf("freshnessScore(%d days ago) = %v, want %v", tt.daysAgo, got, tt.want)
		}
	}

	if got := freshnessScore(time.Time{}, now); got != 0.5 {
		t.Errorf("freshnessScore(zero) = %v, want 0.5", got)
	}
}
