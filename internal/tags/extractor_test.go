// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package tags

import (
	"reflect"
	"testing"

	"github.com/robprofile/robprofile/internal/models"
)

func TestExtract_GenreTags(t *testing.T) {
	item := models.ContentItem{Genre: "Tycoon"}
	got := Extract(item)

	// Genre tags come first, in table order. "Tycoon" as a genre also
	// implies simulator and business.
	want := []string{"tycoon", "simulator", "business"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_UnknownGenre(t *testing.T) {
	got := Extract(models.ContentItem{Genre: "Unheard Of"})
	if len(got) != 0 {
		t.Errorf("unknown genre should yield no tags, got %v", got)
	}
}

func TestExtract_KeywordRules(t *testing.T) {
	item := models.ContentItem{
		Name:        "Pet Simulator X",
		Description: "Collect pets and trade with friends",
	}
	got := Extract(item)

	wantContains := []string{"simulator", "trade"}
	for _, tag := range wantContains {
		if !contains(got, tag) {
			t.Errorf("Extract = %v, missing %q", got, tag)
		}
	}
}

func TestExtract_OneEmissionPerRule(t *testing.T) {
	// Both "fps" and "shooter" belong to the same rule; the tag appears once.
	item := models.ContentItem{Name: "FPS Shooter Arena"}
	got := Extract(item)

	count := 0
	for _, tag := range got {
		if tag == "fps" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("fps emitted %d times, want 1; tags %v", count, got)
	}
	if !contains(got, "arena") {
		t.Errorf("Extract = %v, missing arena", got)
	}
}

func TestExtract_StructuralTags(t *testing.T) {
	tests := []struct {
		name       string
		item       models.ContentItem
		wantSocial bool
		wantParty  bool
		wantPop    bool
	}{
		{
			name:       "large server",
			item:       models.ContentItem{MaxPlayers: 50},
			wantSocial: true,
			wantParty:  true,
		},
		{
			name: "small server below threshold",
			item: models.ContentItem{MaxPlayers: 49},
		},
		{
			name:    "popular game",
			item:    models.ContentItem{Playing: 10_000},
			wantPop: true,
		},
		{
			name: "just under popular",
			item: models.ContentItem{Playing: 9_999},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.item)
			if contains(got, "social") != tt.wantSocial {
				t.Errorf("social presence = %v, want %v (tags %v)", !tt.wantSocial, tt.wantSocial, got)
			}
			if contains(got, "party") != tt.wantParty {
				t.Errorf("party presence mismatch, tags %v", got)
			}
			if contains(got, "popular") != tt.wantPop {
				t.Errorf("popular presence mismatch, tags %v", got)
			}
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	item := models.ContentItem{
		Name:        "Adopt Me! Family Roleplay Town",
		Description: "Build your family home, hangout at the cafe, trade pets",
		Genre:       "Town and City",
		MaxPlayers:  60,
		Playing:     45_000,
	}

	first := Extract(item)
	for i := 0; i < 20; i++ {
		if again := Extract(item); !reflect.DeepEqual(first, again) {
			t.Fatalf("extraction order unstable: %v vs %v", first, again)
		}
	}
}

func TestExtract_NoDuplicates(t *testing.T) {
	// Genre and keyword rules both produce "roleplay"; it appears once.
	item := models.ContentItem{
		Name:  "Roleplay High School",
		Genre: "Town and City",
	}
	got := Extract(item)

	seen := make(map[string]int)
	for _, tag := range got {
		seen[tag]++
	}
	for tag, n := range seen {
		if n > 1 {
			t.Errorf("tag %q appears %d times in %v", tag, n, got)
		}
	}
}

func TestExtract_EmptyItem(t *testing.T) {
	got := Extract(models.ContentItem{})
	if got == nil {
		t.Error("Extract should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("empty item should yield no tags, got %v", got)
	}
}

func contains(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
