// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package archetype

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/models"
)

func testProfiler() *Profiler {
	return NewProfiler(config.ArchetypeConfig{
		SignalDenominator: 80,
		SignalWeight:      0.5,
		MarginWeight:      0.5,
		MarginAmplifier:   2,
		ConfidenceCap:     0.95,
		ConfidenceFloor:   0.30,
	})
}

func TestProfile_EmptyBundle(t *testing.T) {
	p := testProfiler()
	result := p.Profile(models.SignalBundle{}, time.Now())

	if len(result.Scores) != len(Keys) {
		t.Fatalf("Scores has %d entries, want %d", len(result.Scores), len(Keys))
	}
	for key, score := range result.Scores {
		if score != 0 {
			t.Errorf("Scores[%s] = %v, want 0 for empty bundle", key, score)
		}
	}
	if result.Confidence != 0.30 {
		t.Errorf("Confidence = %v, want floor 0.30", result.Confidence)
	}
	// All-zero scores rank by canonical order.
	if result.Primary != Explorer || result.Secondary != Grinder {
		t.Errorf("Primary/Secondary = %s/%s, want explorer/grinder", result.Primary, result.Secondary)
	}
}

func TestProfile_GrinderSignals(t *testing.T) {
	p := testProfiler()
	bundle := models.SignalBundle{
		Badges: []models.Badge{
			{Name: "Tycoon Master"},
			{Name: "Rebirth Champion", Description: "Earned 100 rebirths in the simulator"},
		},
		Groups: []models.Group{
			{Name: "Farming Legends"},
		},
	}

	result := p.Profile(bundle, time.Now())

	if result.Primary != Grinder {
		t.Errorf("Primary = %s, want grinder; scores %v", result.Primary, result.Scores)
	}
	if result.Scores[Grinder] <= result.Scores[Explorer] {
		t.Errorf("grinder score %v should exceed explorer score %v",
			result.Scores[Grinder], result.Scores[Explorer])
	}
}

func TestProfile_BadgeKeywordOccurrences(t *testing.T) {
	p := testProfiler()

	// "trade" and "trading" are distinct want keywords for trader; both
	// occur, so the badge contributes two points, outscoring one point of
	// adventure evidence.
	bundle := models.SignalBundle{
		Badges: []models.Badge{
			{Name: "Trading Post", Description: "trade anything"},
			{Name: "Quest Complete"},
		},
	}

	result := p.Profile(bundle, time.Now())
	if result.Scores[Trader] <= result.Scores[Explorer] {
		t.Errorf("trader %v should outscore explorer %v",
			result.Scores[Trader], result.Scores[Explorer])
	}
}

func TestProfile_GroupsWeighDouble(t *testing.T) {
	p := testProfiler()

	badgeOnly := p.Profile(models.SignalBundle{
		Badges: []models.Badge{{Name: "pvp arena"}},
	}, time.Now())
	groupOnly := p.Profile(models.SignalBundle{
		Groups: []models.Group{{Name: "pvp arena"}},
	}, time.Now())

	// Both bundles put all evidence on competitor, so the normalized
	// distributions match even though raw points differ.
	if !reflect.DeepEqual(badgeOnly.Scores, groupOnly.Scores) {
		t.Errorf("single-source distributions differ: %v vs %v",
			badgeOnly.Scores, groupOnly.Scores)
	}

	// Group evidence doubles signal strength in confidence.
	if groupOnly.Confidence < badgeOnly.Confidence {
		t.Errorf("group confidence %v should be >= badge confidence %v",
			groupOnly.Confidence, badgeOnly.Confidence)
	}
}

func TestProfile_MetaSignalBoundaries(t *testing.T) {
	p := testProfiler()
	now := time.Now()

	makeBadges := func(n int) []models.Badge {
		badges := make([]models.Badge, n)
		for i := range badges {
			badges[i] = models.Badge{Name: fmt.Sprintf("zzz %d", i)}
		}
		return badges
	}

	// Exactly 50 neutral badges do not trigger the grinder bonus.
	at50 := p.Profile(models.SignalBundle{Badges: makeBadges(50)}, now)
	if at50.Scores[Grinder] != 0 {
		t.Errorf("50 badges should not trigger bonus, grinder = %v", at50.Scores[Grinder])
	}

	// 51 neutral badges do.
	at51 := p.Profile(models.SignalBundle{Badges: makeBadges(51)}, now)
	if at51.Scores[Grinder] != 1.0 {
		t.Errorf("51 neutral badges should make grinder the only signal, got %v", at51.Scores[Grinder])
	}
	if at51.Primary != Grinder {
		t.Errorf("Primary = %s, want grinder", at51.Primary)
	}
}

func TestProfile_AccountAgeSignals(t *testing.T) {
	p := testProfiler()
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// Veteran account with no other evidence leans grinder.
	veteran := p.Profile(models.SignalBundle{
		AccountCreated: now.AddDate(-4, 0, 0),
	}, now)
	if veteran.Primary != Grinder {
		t.Errorf("veteran Primary = %s, want grinder", veteran.Primary)
	}

	// Fresh account with few badges leans casual.
	fresh := p.Profile(models.SignalBundle{
		AccountCreated: now.AddDate(0, 0, -30),
	}, now)
	if fresh.Primary != Casual {
		t.Errorf("fresh Primary = %s, want casual", fresh.Primary)
	}

	// Unknown creation date skips age signals entirely.
	unknown := p.Profile(models.SignalBundle{}, now)
	if unknown.Scores[Grinder] != 0 || unknown.Scores[Casual] != 0 {
		t.Errorf("zero creation time must not trigger age bonuses: %v", unknown.Scores)
	}
}

func TestProfile_ScoresSumToOne(t *testing.T) {
	p := testProfiler()
	bundle := models.SignalBundle{
		Badges: []models.Badge{
			{Name: "Obby Escape Tower"},
			{Name: "Trade Master"},
			{Name: "PVP Arena Winner"},
			{Name: "Builder of the Year", Description: "sandbox creative"},
		},
		Groups: []models.Group{
			{Name: "Roleplay Hospital"},
			{Name: "Hangout Cafe"},
		},
		AccountCreated: time.Now().AddDate(-5, 0, 0),
	}

	result := p.Profile(bundle, time.Now())

	sum := 0.0
	for _, v := range result.Scores {
		sum += v
	}
	// Per-entry rounding to two decimals allows small drift.
	if math.Abs(sum-1.0) > 0.05 {
		t.Errorf("scores sum to %v, want ~1.0: %v", sum, result.Scores)
	}
}

func TestProfile_Deterministic(t *testing.T) {
	p := testProfiler()
	now := time.Now()
	bundle := models.SignalBundle{
		Badges: []models.Badge{{Name: "Adventure Quest"}, {Name: "Horror Night"}},
		Groups: []models.Group{{Name: "Mystery Club"}},
	}

	first := p.Profile(bundle, now)
	for i := 0; i < 50; i++ {
		if again := p.Profile(bundle, now); !reflect.DeepEqual(first, again) {
			t.Fatalf("profile not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestProfile_ConfidenceBounds(t *testing.T) {
	p := testProfiler()

	// Massive one-sided evidence pushes confidence to the cap, never past.
	badges := make([]models.Badge, 150)
	for i := range badges {
		badges[i] = models.Badge{Name: "simulator tycoon idle grind"}
	}
	result := p.Profile(models.SignalBundle{Badges: badges}, time.Now())

	if result.Confidence > 0.95 {
		t.Errorf("Confidence = %v, exceeds cap 0.95", result.Confidence)
	}
	if result.Confidence < 0.30 {
		t.Errorf("Confidence = %v, below floor 0.30", result.Confidence)
	}
	if result.Primary != Grinder {
		t.Errorf("Primary = %s, want grinder", result.Primary)
	}
}

func TestNeutral(t *testing.T) {
	p := testProfiler()
	result := p.Neutral()

	if result.Confidence != 0.30 {
		t.Errorf("neutral Confidence = %v, want 0.30", result.Confidence)
	}
	for _, score := range result.Scores {
		if score != 0 {
			t.Errorf("neutral scores should be zero, got %v", result.Scores)
			break
		}
	}
}

func TestReasonFor(t *testing.T) {
	if got := ReasonFor(Grinder); got != "Perfect for long-term progression" {
		t.Errorf("ReasonFor(grinder) = %q", got)
	}
	if got := ReasonFor(Key("unknown")); got != "Suggested for you" {
		t.Errorf("ReasonFor(unknown) = %q", got)
	}
}

func TestValid(t *testing.T) {
	for _, key := range Keys {
		if !Valid(key) {
			t.Errorf("Valid(%s) = false", key)
		}
	}
	if Valid(Key("speedrunner")) {
		t.Error("Valid(speedrunner) = true, want false")
	}
}
