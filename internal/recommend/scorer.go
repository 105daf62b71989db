// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package recommend ranks candidate content items against a user's
// archetype profile.
//
// The scorer blends three deterministic sub-scores per item: archetype
// tag match, log-scale popularity and update freshness. The engine
// orchestrates the full pipeline with graceful degradation at every
// stage; a user with no signals still receives popularity-driven
// recommendations at floor confidence.
package recommend

import (
	"math"
	"sort"
	"time"

	"github.com/robprofile/robprofile/internal/archetype"
	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/models"
)

// Scorer computes blended 0-100 scores for content items.
type Scorer struct {
	cfg config.RecommendConfig
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(cfg config.RecommendConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the final score for item given the user's archetype
// score vector, along with the archetypes whose want-tags overlapped the
// item's tags, strongest user affinity first.
func (s *Scorer) Score(item models.ContentItem, userScores map[archetype.Key]float64, now time.Time) (int, []archetype.Key) {
	match, matched := s.matchScore(item.Tags, userScores)
	popularity := popularityScore(item.Playing, item.Visits)
	freshness := freshnessScore(item.Updated, now)

	blended := s.cfg.MatchWeight*match +
		s.cfg.PopularityWeight*popularity +
		s.cfg.FreshnessWeight*freshness

	final := int(math.Round(100 * blended))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	if len(matched) > s.cfg.MatchedArchetypesLimit && s.cfg.MatchedArchetypesLimit > 0 {
		matched = matched[:s.cfg.MatchedArchetypesLimit]
	}
	return final, matched
}

// matchScore computes the weighted tag match across all archetypes the
// user has affinity for. Each archetype contributes its clamped per-tag
// match weighted by the user's score for it.
func (s *Scorer) matchScore(tags []string, userScores map[archetype.Key]float64) (float64, []archetype.Key) {
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}

	var matchSum, totalWeight float64
	var matched []archetype.Key

	// Iterate in canonical order so matched lists are stable.
	for _, key := range archetype.Keys {
		userScore := userScores[key]
		if userScore <= 0 {
			continue
		}

		affinity := archetype.Affinities[key]
		wantMatches := 0
		for _, want := range affinity.Want {
			if _, ok := tagSet[want]; ok {
				wantMatches++
			}
		}
		avoidMatches := 0
		for _, avoid := range affinity.Avoid {
			if _, ok := tagSet[avoid]; ok {
				avoidMatches++
			}
		}

		perArchetype := float64(wantMatches)*s.cfg.WantTagBonus -
			float64(avoidMatches)*s.cfg.AvoidTagPenalty
		perArchetype = math.Min(math.Max(perArchetype, 0), 1)

		matchSum += perArchetype * userScore
		totalWeight += userScore

		if wantMatches > 0 {
			matched = append(matched, key)
		}
	}

	if totalWeight == 0 {
		return 0, nil
	}

	// Order matched archetypes by the user's affinity, canonical order on
	// ties (SliceStable keeps the insertion order from above).
	sort.SliceStable(matched, func(i, j int) bool {
		return userScores[matched[i]] > userScores[matched[j]]
	})

	return matchSum / totalWeight, matched
}

// popularityScore maps live players and lifetime visits onto 0-1 using
// log scales. Items missing both signals get a flat neutral score.
func popularityScore(playing, visits int64) float64 {
	if playing == 0 && visits == 0 {
		return 0.3
	}

	score := 0.0
	if playing > 0 {
		logPlaying := math.Log10(float64(playing) + 1)
		score += math.Min((logPlaying-2.7)/2.5, 0.6) * 0.6
	}
	if visits > 0 {
		logVisits := math.Log10(float64(visits) + 1)
		score += math.Min(logVisits/10, 0.4) * 0.4
	}

	return math.Min(score+0.3, 1)
}

// freshnessScore maps the time since the last update onto a step scale.
// Unknown update times get a neutral score.
func freshnessScore(updated time.Time, now time.Time) float64 {
	if updated.IsZero() {
		return 0.5
	}

	days := now.Sub(updated).Hours() / 24
	switch {
	case days < 7:
		return 1.0
	case days < 30:
		return 0.85
	case days < 90:
		return 0.7
	case days < 180:
		return 0.5
	case days < 365:
		return 0.3
	default:
		return 0.2
	}
}
