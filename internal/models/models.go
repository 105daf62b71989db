// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package models contains the shared data types exchanged between the
// profiling, recommendation, pool, and API layers.
package models

import "time"

// Badge is a single badge grant on a user's public profile.
type Badge struct {
	// ID is the badge identifier.
	ID int64 `json:"id"`

	// Name is the badge display name.
	Name string `json:"name"`

	// Description is the optional badge description.
	Description string `json:"description,omitempty"`

	// AwarderID identifies the place that granted the badge, when known.
	AwarderID int64 `json:"awarder_id,omitempty"`
}

// Group is a group membership on a user's public profile.
type Group struct {
	// ID is the group identifier.
	ID int64 `json:"id"`

	// Name is the group display name.
	Name string `json:"name"`

	// MemberCount is the group's member count, when known.
	MemberCount int `json:"member_count,omitempty"`
}

// Profile is the account metadata portion of a user's public profile.
type Profile struct {
	// ID is the user identifier.
	ID int64 `json:"id"`

	// Name is the account username.
	Name string `json:"name"`

	// DisplayName is the display name shown in clients.
	DisplayName string `json:"display_name,omitempty"`

	// Description is the free-text profile description.
	Description string `json:"description,omitempty"`

	// Created is when the account was created.
	Created time.Time `json:"created"`

	// IsBanned reports whether the account is banned.
	IsBanned bool `json:"is_banned,omitempty"`

	// HasVerifiedBadge reports whether the account carries a verified badge.
	HasVerifiedBadge bool `json:"has_verified_badge,omitempty"`
}

// SignalBundle holds the raw inputs to archetype profiling.
// Badges and Groups may be empty; profiling still produces a defined,
// low-confidence result.
type SignalBundle struct {
	// Badges is the (paginated, capped) badge list, newest first.
	Badges []Badge `json:"badges"`

	// Groups is the group membership list.
	Groups []Group `json:"groups"`

	// AccountCreated is the account creation timestamp. The zero value
	// means the profile endpoint was unavailable; age bonuses are skipped.
	AccountCreated time.Time `json:"account_created"`
}

// ContentItem is a candidate recommendable game.
// Tags are derived from the other fields, never authoritative input.
type ContentItem struct {
	// UniverseID uniquely identifies the game within a pool snapshot.
	UniverseID int64 `json:"universeId"`

	// PlaceID is the root place used to build the game URL.
	PlaceID int64 `json:"placeId"`

	// Name is the game title.
	Name string `json:"name"`

	// Description is the game description, truncated at ingest.
	Description string `json:"description,omitempty"`

	// CreatorName is the display name of the game's creator.
	CreatorName string `json:"creatorName,omitempty"`

	// Genre is the upstream genre label, possibly empty.
	Genre string `json:"genre,omitempty"`

	// Playing is the current concurrent player count.
	Playing int64 `json:"playing"`

	// Visits is the lifetime visit count.
	Visits int64 `json:"visits"`

	// Favorites is the favorite count.
	Favorites int64 `json:"favorites,omitempty"`

	// MaxPlayers is the per-server player capacity.
	MaxPlayers int `json:"maxPlayers,omitempty"`

	// Updated is when the game was last updated, when known.
	Updated time.Time `json:"updated,omitempty"`

	// IconURL is the resolved thumbnail URL, empty when resolution failed.
	IconURL string `json:"iconUrl,omitempty"`

	// GameURL is the canonical game page URL.
	GameURL string `json:"gameUrl,omitempty"`

	// Tags is the derived tag set in insertion order.
	Tags []string `json:"tags"`
}

// CandidatePool is a cached snapshot of eligible content items.
// It is replaced wholesale on refresh and never mutated in place.
type CandidatePool struct {
	// UpdatedAt is when the snapshot was built.
	UpdatedAt time.Time `json:"updatedAt"`

	// Source identifies how the snapshot was produced.
	Source string `json:"source"`

	// Count is the number of items, recorded for quick status reads.
	Count int `json:"count"`

	// Items are the eligible content items.
	Items []ContentItem `json:"items"`
}

// RecommendationEntry is one scored item in a recommendation response.
// MatchedArchetypes explains why the item scored; it is display-only.
type RecommendationEntry struct {
	Item ContentItem `json:"item"`

	// Score is the blended match score, 0-100.
	Score int `json:"score"`

	// MatchedArchetypes lists archetypes whose want-tags intersected the
	// item's tags, strongest affinity first.
	MatchedArchetypes []string `json:"matched_archetypes"`

	// Reason is a short display string for the user's primary archetype.
	Reason string `json:"reason,omitempty"`
}

// RefreshStatus is the persisted outcome of the last pool refresh.
type RefreshStatus struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`

	// Error is the failure classification message, empty on success.
	Error string `json:"error,omitempty"`

	// RawCount is the number of candidates discovered upstream.
	RawCount int `json:"raw_count"`

	// FilteredCount is the number of items that passed the activity gate.
	FilteredCount int `json:"filtered_count"`

	// Sources holds per-source fetch counters.
	Sources map[string]SourceStats `json:"sources,omitempty"`

	// Diagnostics carries the request-scoped fetch trace of the refresh.
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// SourceStats counts discovery attempts against a single upstream source.
type SourceStats struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Items     int `json:"items"`
}

// Diagnostics is a request-scoped fetch trace. It is threaded through an
// operation by value ownership and returned with the result, so concurrent
// operations never interleave writes.
type Diagnostics struct {
	Requests []FetchTrace `json:"requests,omitempty"`
	Errors   []FetchTrace `json:"errors,omitempty"`
}

// FetchTrace records a single upstream call for diagnostics.
type FetchTrace struct {
	Label      string `json:"label"`
	URL        string `json:"url"`
	Status     int    `json:"status,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// AddRequest appends a successful or failed request trace.
func (d *Diagnostics) AddRequest(t FetchTrace) {
	d.Requests = append(d.Requests, t)
}

// AddError appends a transport-level error trace.
func (d *Diagnostics) AddError(t FetchTrace) {
	d.Errors = append(d.Errors, t)
}

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response timing information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the structured error payload in an APIResponse.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HealthStatus reports service health for monitoring endpoints.
type HealthStatus struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	CacheReady    bool       `json:"cache_ready"`
	PoolUpdatedAt *time.Time `json:"pool_updated_at,omitempty"`
	PoolItems     int        `json:"pool_items"`
	Uptime        float64    `json:"uptime_seconds"`
}
