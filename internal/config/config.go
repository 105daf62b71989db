// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package config defines the application configuration and its loader.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last: built-in defaults, optional YAML file, environment
// variables. Every tunable of the scoring and pool pipeline is a named
// value here; no component re-derives constants.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the RobProfile server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Roblox    RobloxConfig    `koanf:"roblox"`
	Pool      PoolConfig      `koanf:"pool"`
	Archetype ArchetypeConfig `koanf:"archetype"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// RobloxConfig holds upstream API client settings.
type RobloxConfig struct {
	// Base URLs for the public Roblox API hosts.
	UsersURL      string `koanf:"users_url"`
	BadgesURL     string `koanf:"badges_url"`
	GroupsURL     string `koanf:"groups_url"`
	GamesURL      string `koanf:"games_url"`
	ThumbnailsURL string `koanf:"thumbnails_url"`
	ExploreURL    string `koanf:"explore_url"`

	// Timeout is the per-call timeout for upstream requests.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries is the retry count beyond the first attempt.
	MaxRetries int `koanf:"max_retries"`

	// InitialBackoff is the base delay for exponential backoff.
	InitialBackoff time.Duration `koanf:"initial_backoff"`

	// MaxRetryAfter caps how long a server-provided Retry-After is honored.
	MaxRetryAfter time.Duration `koanf:"max_retry_after"`

	// RateLimit is the request-per-second budget against upstream hosts.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the rate limiter burst size.
	RateBurst int `koanf:"rate_burst"`

	// BreakerEnabled wires a circuit breaker around each upstream host.
	BreakerEnabled bool `koanf:"breaker_enabled"`

	// BadgePageLimit is the page size for badge pagination.
	BadgePageLimit int `koanf:"badge_page_limit"`

	// BadgeMax caps total badges fetched per user.
	BadgeMax int `koanf:"badge_max"`
}

// PoolConfig holds candidate pool refresh settings.
type PoolConfig struct {
	// MinActivity is the inclusive concurrent-player threshold for
	// pool membership. The sole inclusion gate by default.
	MinActivity int64 `koanf:"min_activity"`

	// VisitsFallbackEnabled re-enables the historical OR rule that admits
	// items without live activity when lifetime visits are high.
	VisitsFallbackEnabled bool `koanf:"visits_fallback_enabled"`

	// MinVisitsFallback is the visits threshold for the OR rule.
	MinVisitsFallback int64 `koanf:"min_visits_fallback"`

	// MaxSorts caps how many discovery sorts are consumed per refresh.
	MaxSorts int `koanf:"max_sorts"`

	// MetadataBatchSize is the universe-ID batch size for enrichment.
	MetadataBatchSize int `koanf:"metadata_batch_size"`

	// EnrichConcurrency bounds concurrent enrichment batches.
	EnrichConcurrency int `koanf:"enrich_concurrency"`

	// DescriptionLimit truncates stored item descriptions.
	DescriptionLimit int `koanf:"description_limit"`

	// PoolTTL is the cache lifetime of the pool snapshot.
	PoolTTL time.Duration `koanf:"pool_ttl"`

	// StatusTTL is the cache lifetime of the refresh status record.
	StatusTTL time.Duration `koanf:"status_ttl"`

	// RefreshInterval is how often the background service refreshes.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// RefreshOnStartup triggers a refresh when the service starts.
	RefreshOnStartup bool `koanf:"refresh_on_startup"`

	// RefreshKey guards the manual refresh endpoint; empty disables the check.
	RefreshKey string `koanf:"refresh_key"`
}

// ArchetypeConfig holds profiler constants. The confidence formula is
// conf = min(SignalWeight*signal + MarginWeight*margin*MarginAmplifier, Cap)
// clamped to Floor, with signal = min((badges + 2*groups)/SignalDenominator, 1).
type ArchetypeConfig struct {
	SignalDenominator float64 `koanf:"signal_denominator"`
	SignalWeight      float64 `koanf:"signal_weight"`
	MarginWeight      float64 `koanf:"margin_weight"`
	MarginAmplifier   float64 `koanf:"margin_amplifier"`
	ConfidenceCap     float64 `koanf:"confidence_cap"`
	ConfidenceFloor   float64 `koanf:"confidence_floor"`
}

// RecommendConfig holds scorer and orchestrator settings.
type RecommendConfig struct {
	// MatchWeight, PopularityWeight and FreshnessWeight blend the three
	// sub-scores into the 0-100 final score.
	MatchWeight      float64 `koanf:"match_weight"`
	PopularityWeight float64 `koanf:"popularity_weight"`
	FreshnessWeight  float64 `koanf:"freshness_weight"`

	// WantTagBonus and AvoidTagPenalty shape the per-archetype tag match.
	WantTagBonus    float64 `koanf:"want_tag_bonus"`
	AvoidTagPenalty float64 `koanf:"avoid_tag_penalty"`

	// TopK is the number of recommendations returned from the cached pool.
	TopK int `koanf:"top_k"`

	// MatchedArchetypesLimit caps the explainability list per entry.
	MatchedArchetypesLimit int `koanf:"matched_archetypes_limit"`

	// DetailLimit is the larger result count used by the detail endpoint.
	DetailLimit int `koanf:"detail_limit"`

	// ResponseMaxAge is the HTTP cache hint for pool-backed responses.
	ResponseMaxAge time.Duration `koanf:"response_max_age"`

	// LiveResponseMaxAge is the shorter hint for live-fallback responses.
	LiveResponseMaxAge time.Duration `koanf:"live_response_max_age"`
}

// CacheConfig holds the badger-backed store settings.
type CacheConfig struct {
	// Path is the badger database directory. Empty selects an in-memory
	// store, used by tests and ephemeral deployments.
	Path string `koanf:"path"`

	// GCInterval is how often badger value-log GC runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime behavior.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Pool.MinActivity < 0 {
		return fmt.Errorf("pool.min_activity must be >= 0, got %d", c.Pool.MinActivity)
	}
	if c.Pool.MetadataBatchSize <= 0 {
		return fmt.Errorf("pool.metadata_batch_size must be > 0, got %d", c.Pool.MetadataBatchSize)
	}
	if c.Pool.EnrichConcurrency <= 0 {
		return fmt.Errorf("pool.enrich_concurrency must be > 0, got %d", c.Pool.EnrichConcurrency)
	}
	if c.Archetype.SignalDenominator <= 0 {
		return fmt.Errorf("archetype.signal_denominator must be > 0, got %v", c.Archetype.SignalDenominator)
	}
	if c.Archetype.ConfidenceFloor < 0 || c.Archetype.ConfidenceFloor > c.Archetype.ConfidenceCap {
		return fmt.Errorf("archetype confidence floor %v must be within [0, cap %v]",
			c.Archetype.ConfidenceFloor, c.Archetype.ConfidenceCap)
	}
	if c.Archetype.ConfidenceCap > 1 {
		return fmt.Errorf("archetype.confidence_cap must be <= 1, got %v", c.Archetype.ConfidenceCap)
	}
	wsum := c.Recommend.MatchWeight + c.Recommend.PopularityWeight + c.Recommend.FreshnessWeight
	if wsum <= 0 {
		return fmt.Errorf("recommend weights must sum to a positive value, got %v", wsum)
	}
	if c.Recommend.TopK <= 0 {
		return fmt.Errorf("recommend.top_k must be > 0, got %d", c.Recommend.TopK)
	}
	if c.Roblox.Timeout <= 0 {
		return fmt.Errorf("roblox.timeout must be > 0, got %v", c.Roblox.Timeout)
	}
	if c.Roblox.MaxRetries < 0 {
		return fmt.Errorf("roblox.max_retries must be >= 0, got %d", c.Roblox.MaxRetries)
	}
	return nil
}
