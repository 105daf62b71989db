// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package pool builds and maintains the candidate pool of recommendable
// games.
//
// Discovery payloads from the explore API are only loosely versioned, so
// extraction is shape-tolerant: each extractor tries a fixed, ordered
// chain of known field layouts and takes the first that yields data.
// Order is fixed so the same payload always extracts the same way.
package pool

import (
	"time"

	"github.com/goccy/go-json"
)

// sortRef identifies one discovery sort.
type sortRef struct {
	ID   string
	Name string
}

// seed is a discovered game before enrichment.
type seed struct {
	UniverseID int64
	PlaceID    int64
}

// wireSorts tolerates the known get-sorts layouts.
type wireSorts struct {
	Sorts []wireSort `json:"sorts"`
}

type wireSort struct {
	Token           string      `json:"token"`
	TopicID         json.Number `json:"topicId"`
	SortID          string      `json:"sortId"`
	Name            string      `json:"name"`
	SortDisplayName string      `json:"sortDisplayName"`
}

// id returns the first usable sort identifier: topicId, sortId, token.
func (s wireSort) id() string {
	if s.TopicID.String() != "" && s.TopicID.String() != "0" {
		return s.TopicID.String()
	}
	if s.SortID != "" {
		return s.SortID
	}
	return s.Token
}

func (s wireSort) displayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.SortDisplayName
}

// extractSorts parses a get-sorts payload into sort references.
func extractSorts(data []byte) ([]sortRef, error) {
	var payload wireSorts
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	refs := make([]sortRef, 0, len(payload.Sorts))
	for _, s := range payload.Sorts {
		id := s.id()
		if id == "" {
			continue
		}
		refs = append(refs, sortRef{ID: id, Name: s.displayName() + " " + s.Token})
	}
	return refs, nil
}

// wireExperience tolerates the known per-item layouts in sort content
// and games list payloads.
type wireExperience struct {
	UniverseID  int64 `json:"universeId"`
	PlaceID     int64 `json:"placeId"`
	RootPlaceID int64 `json:"rootPlaceId"`
}

// wireContent tolerates both item array names used by the explore API
// and the games list API.
type wireContent struct {
	Experiences []wireExperience `json:"experiences"`
	Games       []wireExperience `json:"games"`
}

// extractSeeds parses a sort-content or games-list payload into seeds.
// The experiences array takes precedence over games when both appear.
func extractSeeds(data []byte) ([]seed, error) {
	var payload wireContent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	items := payload.Experiences
	if len(items) == 0 {
		items = payload.Games
	}

	seeds := make([]seed, 0, len(items))
	for _, item := range items {
		universeID := item.UniverseID
		if universeID == 0 {
			universeID = item.PlaceID
		}
		if universeID == 0 {
			continue
		}
		placeID := item.PlaceID
		if placeID == 0 {
			placeID = item.RootPlaceID
		}
		seeds = append(seeds, seed{UniverseID: universeID, PlaceID: placeID})
	}
	return seeds, nil
}

// wireGameDetail is one entry of the games metadata batch response.
type wireGameDetail struct {
	ID          int64  `json:"id"`
	RootPlaceID int64  `json:"rootPlaceId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Playing     int64  `json:"playing"`
	Visits      int64  `json:"visits"`
	Favorites   int64  `json:"favoritedCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Updated     string `json:"updated"`
	Creator     struct {
		Name string `json:"name"`
	} `json:"creator"`
}

type wireGameBatch struct {
	Data []wireGameDetail `json:"data"`
}

// metadataEntry is an enriched game straight from the metadata batch,
// before tagging and filtering.
type metadataEntry struct {
	UniverseID  int64
	PlaceID     int64
	Name        string
	Description string
	CreatorName string
	Genre       string
	Playing     int64
	Visits      int64
	Favorites   int64
	MaxPlayers  int
	Updated     time.Time
}

// extractMetadata parses a games metadata batch payload.
func extractMetadata(data []byte) ([]metadataEntry, error) {
	var batch wireGameBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}

	entries := make([]metadataEntry, 0, len(batch.Data))
	for _, g := range batch.Data {
		if g.ID == 0 {
			continue
		}
		entry := metadataEntry{
			UniverseID:  g.ID,
			PlaceID:     g.RootPlaceID,
			Name:        g.Name,
			Description: g.Description,
			CreatorName: g.Creator.Name,
			Genre:       g.Genre,
			Playing:     g.Playing,
			Visits:      g.Visits,
			Favorites:   g.Favorites,
			MaxPlayers:  g.MaxPlayers,
		}
		if updated, err := time.Parse(time.RFC3339, g.Updated); err == nil {
			entry.Updated = updated
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
