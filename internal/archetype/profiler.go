// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package archetype

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/models"
)

// Result is a user's archetype profile. Scores hold one entry per
// archetype and sum to roughly 1 after rounding.
type Result struct {
	Scores     map[Key]float64 `json:"scores"`
	Primary    Key             `json:"primary"`
	Secondary  Key             `json:"secondary"`
	Confidence float64         `json:"confidence"`
}

// Signal weights for raw evidence.
const (
	badgeKeywordPoints = 1
	groupKeywordPoints = 2

	manyBadgesThreshold     = 50
	veryManyBadgesThreshold = 100
	manyBadgesBonus         = 3
	veryManyBadgesBonus     = 5

	manyGroupsThreshold     = 10
	veryManyGroupsThreshold = 20
	manyGroupsBonus         = 3
	veryManyGroupsBonus     = 5

	veteranAccountDays = 365 * 3
	veteranBonus       = 3

	newAccountDays   = 180
	newAccountBadges = 20
	newAccountBonus  = 5
)

// Profiler computes archetype profiles from signal bundles.
type Profiler struct {
	cfg config.ArchetypeConfig
}

// NewProfiler creates a Profiler with the given constants.
func NewProfiler(cfg config.ArchetypeConfig) *Profiler {
	return &Profiler{cfg: cfg}
}

// Profile scores bundle against the archetype vocabulary. The result is
// always fully populated; an empty bundle yields a uniform zero score
// vector and floor confidence. now anchors the account-age signals so
// tests can pin time.
func (p *Profiler) Profile(bundle models.SignalBundle, now time.Time) Result {
	raw := make(map[Key]float64, len(Keys))
	for _, key := range Keys {
		raw[key] = 0
	}

	// Badge evidence: every want-keyword occurrence in a badge's name or
	// description adds one point to that archetype.
	for _, badge := range bundle.Badges {
		text := strings.ToLower(badge.Name + " " + badge.Description)
		for _, key := range Keys {
			for _, kw := range Affinities[key].Want {
				if strings.Contains(text, kw) {
					raw[key] += badgeKeywordPoints
				}
			}
		}
	}

	// Group evidence weighs double: joining is a stronger commitment than
	// earning a badge in passing.
	for _, group := range bundle.Groups {
		text := strings.ToLower(group.Name)
		for _, key := range Keys {
			for _, kw := range Affinities[key].Want {
				if strings.Contains(text, kw) {
					raw[key] += groupKeywordPoints
				}
			}
		}
	}

	// Meta signals from collection sizes and account age.
	badgeCount := len(bundle.Badges)
	groupCount := len(bundle.Groups)

	if badgeCount > manyBadgesThreshold {
		raw[Grinder] += manyBadgesBonus
	}
	if badgeCount > veryManyBadgesThreshold {
		raw[Grinder] += veryManyBadgesBonus
	}
	if groupCount > manyGroupsThreshold {
		raw[Socializer] += manyGroupsBonus
	}
	if groupCount > veryManyGroupsThreshold {
		raw[Socializer] += veryManyGroupsBonus
	}

	if !bundle.AccountCreated.IsZero() {
		ageDays := int(now.Sub(bundle.AccountCreated).Hours() / 24)
		if ageDays > veteranAccountDays {
			raw[Grinder] += veteranBonus
		}
		if ageDays < newAccountDays && badgeCount < newAccountBadges {
			raw[Casual] += newAccountBonus
		}
	}

	// Normalize to a distribution rounded to two decimals.
	total := 0.0
	for _, v := range raw {
		total += v
	}
	if total == 0 {
		total = 1
	}

	scores := make(map[Key]float64, len(Keys))
	for _, key := range Keys {
		scores[key] = round2(raw[key] / total)
	}

	primary, secondary := rank(scores)

	// Confidence blends evidence volume with the lead of the primary
	// archetype over the secondary.
	signal := math.Min(
		(float64(badgeCount)+2*float64(groupCount))/p.cfg.SignalDenominator, 1)
	margin := scores[primary] - scores[secondary]
	confidence := math.Min(
		p.cfg.SignalWeight*signal+p.cfg.MarginWeight*margin*p.cfg.MarginAmplifier,
		p.cfg.ConfidenceCap)
	confidence = math.Max(confidence, p.cfg.ConfidenceFloor)

	return Result{
		Scores:     scores,
		Primary:    primary,
		Secondary:  secondary,
		Confidence: confidence,
	}
}

// Neutral returns the defined result for users with no usable signals.
func (p *Profiler) Neutral() Result {
	return p.Profile(models.SignalBundle{}, time.Now())
}

// rank returns the top two archetypes by score, breaking ties by the
// canonical key order.
func rank(scores map[Key]float64) (primary, secondary Key) {
	ordered := make([]Key, len(Keys))
	copy(ordered, Keys)

	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i]] > scores[ordered[j]]
	})

	return ordered[0], ordered[1]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
