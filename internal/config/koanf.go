// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/robprofile/config.yaml",
	"/etc/robprofile/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Default returns a Config with all default values applied.
// These mirror the production constants of the scoring pipeline; every
// threshold, weight, cap and floor lives here and nowhere else.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8787,
			Timeout: 30 * time.Second,
		},
		Roblox: RobloxConfig{
			UsersURL:       "https://users.roblox.com",
			BadgesURL:      "https://badges.roblox.com",
			GroupsURL:      "https://groups.roblox.com",
			GamesURL:       "https://games.roblox.com",
			ThumbnailsURL:  "https://thumbnails.roblox.com",
			ExploreURL:     "https://apis.roblox.com/explore-api",
			Timeout:        4 * time.Second,
			MaxRetries:     2,
			InitialBackoff: 1 * time.Second,
			MaxRetryAfter:  30 * time.Second,
			RateLimit:      20,
			RateBurst:      10,
			BreakerEnabled: true,
			BadgePageLimit: 100,
			BadgeMax:       200,
		},
		Pool: PoolConfig{
			MinActivity:           500,
			VisitsFallbackEnabled: false,
			MinVisitsFallback:     1_000_000,
			MaxSorts:              5,
			MetadataBatchSize:     35,
			EnrichConcurrency:     3,
			DescriptionLimit:      500,
			PoolTTL:               6 * time.Hour,
			StatusTTL:             24 * time.Hour,
			RefreshInterval:       4 * time.Hour,
			RefreshOnStartup:      true,
			RefreshKey:            "",
		},
		Archetype: ArchetypeConfig{
			SignalDenominator: 80,
			SignalWeight:      0.5,
			MarginWeight:      0.5,
			MarginAmplifier:   2,
			ConfidenceCap:     0.95,
			ConfidenceFloor:   0.30,
		},
		Recommend: RecommendConfig{
			MatchWeight:            0.55,
			PopularityWeight:       0.30,
			FreshnessWeight:        0.15,
			WantTagBonus:           0.3,
			AvoidTagPenalty:        0.2,
			TopK:                   12,
			MatchedArchetypesLimit: 3,
			DetailLimit:            25,
			ResponseMaxAge:         5 * time.Minute,
			LiveResponseMaxAge:     1 * time.Minute,
		},
		Cache: CacheConfig{
			Path:       "/data/robprofile",
			GCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults from Default()
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when supplied via environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped keys return empty string and are skipped, which keeps unrelated
// environment variables from polluting the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",

		// Upstream client mappings
		"roblox_users_url":       "roblox.users_url",
		"roblox_badges_url":      "roblox.badges_url",
		"roblox_groups_url":      "roblox.groups_url",
		"roblox_games_url":       "roblox.games_url",
		"roblox_thumbnails_url":  "roblox.thumbnails_url",
		"roblox_explore_url":     "roblox.explore_url",
		"roblox_timeout":         "roblox.timeout",
		"roblox_max_retries":     "roblox.max_retries",
		"roblox_initial_backoff": "roblox.initial_backoff",
		"roblox_rate_limit":      "roblox.rate_limit",
		"roblox_rate_burst":      "roblox.rate_burst",
		"roblox_breaker_enabled": "roblox.breaker_enabled",
		"roblox_badge_max":       "roblox.badge_max",

		// Pool mappings
		"pool_min_activity":            "pool.min_activity",
		"pool_visits_fallback_enabled": "pool.visits_fallback_enabled",
		"pool_min_visits_fallback":     "pool.min_visits_fallback",
		"pool_max_sorts":               "pool.max_sorts",
		"pool_metadata_batch_size":     "pool.metadata_batch_size",
		"pool_enrich_concurrency":      "pool.enrich_concurrency",
		"pool_ttl":                     "pool.pool_ttl",
		"pool_status_ttl":              "pool.status_ttl",
		"pool_refresh_interval":        "pool.refresh_interval",
		"pool_refresh_on_startup":      "pool.refresh_on_startup",
		"games_refresh_key":            "pool.refresh_key",

		// Profiler mappings
		"archetype_signal_denominator": "archetype.signal_denominator",
		"archetype_signal_weight":      "archetype.signal_weight",
		"archetype_margin_weight":      "archetype.margin_weight",
		"archetype_margin_amplifier":   "archetype.margin_amplifier",
		"archetype_confidence_cap":     "archetype.confidence_cap",
		"archetype_confidence_floor":   "archetype.confidence_floor",

		// Scorer mappings
		"recommend_match_weight":      "recommend.match_weight",
		"recommend_popularity_weight": "recommend.popularity_weight",
		"recommend_freshness_weight":  "recommend.freshness_weight",
		"recommend_top_k":             "recommend.top_k",
		"recommend_detail_limit":      "recommend.detail_limit",

		// Cache mappings
		"cache_path":        "cache.path",
		"cache_gc_interval": "cache.gc_interval",

		// Security mappings
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
