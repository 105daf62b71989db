// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/robprofile/robprofile/internal/archetype"
	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/logging"
	"github.com/robprofile/robprofile/internal/metrics"
	"github.com/robprofile/robprofile/internal/models"
)

// Response sources. The live fallback label tells clients the cached
// pool was unavailable and the result was built from an on-demand fetch.
const (
	SourcePool         = "pool"
	SourceLiveFallback = "live_fallback"
)

// SignalSource fetches the raw profiling inputs for a user.
type SignalSource interface {
	FetchSignals(ctx context.Context, userID int64) (models.SignalBundle, models.Diagnostics)
}

// PoolSource supplies candidate pools. Snapshot reads the cached pool;
// Live builds one on demand when the cache cannot serve.
type PoolSource interface {
	Snapshot(ctx context.Context) (*models.CandidatePool, error)
	Live(ctx context.Context) (*models.CandidatePool, error)
}

// Recommendation is the full result of one recommendation run.
type Recommendation struct {
	UserID        int64                        `json:"user_id"`
	Profile       archetype.Result             `json:"profile"`
	Entries       []models.RecommendationEntry `json:"recommendations"`
	Source        string                       `json:"source"`
	PoolUpdatedAt time.Time                    `json:"pool_updated_at"`

	// BadgeCount and GroupCount report how much evidence the profile was
	// built from.
	BadgeCount  int                `json:"badge_count"`
	GroupCount  int                `json:"group_count"`
	Diagnostics models.Diagnostics `json:"-"`
}

// Engine orchestrates profiling, pool loading and scoring.
type Engine struct {
	cfg      config.RecommendConfig
	profiler *archetype.Profiler
	scorer   *Scorer
	signals  SignalSource
	pool     PoolSource
}

// NewEngine wires an Engine from its collaborators.
func NewEngine(cfg config.RecommendConfig, profiler *archetype.Profiler, signals SignalSource, pool PoolSource) *Engine {
	return &Engine{
		cfg:      cfg,
		profiler: profiler,
		scorer:   NewScorer(cfg),
		signals:  signals,
		pool:     pool,
	}
}

// Recommend produces the top-limit recommendations for userID. A limit
// of zero uses the configured default. Signal fetch failures degrade to
// a neutral profile; only a missing candidate pool on both the cached
// and live paths fails the operation.
func (e *Engine) Recommend(ctx context.Context, userID int64, limit int) (*Recommendation, error) {
	start := time.Now()
	if limit <= 0 {
		limit = e.cfg.TopK
	}

	bundle, diag := e.signals.FetchSignals(ctx, userID)
	profile := e.profiler.Profile(bundle, start)
	metrics.ProfilesComputed.Inc()

	pool, source, err := e.loadPool(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool.Items) == 0 {
		return nil, models.NewClassifiedError(models.ClassDataEmpty, "recommend",
			errNoCandidates)
	}

	entries := e.scoreAndRank(pool.Items, profile, limit, start)

	metrics.RecordRecommendation(source, time.Since(start))
	logging.Ctx(ctx).Info().
		Int64("user_id", userID).
		Str("source", source).
		Str("primary", string(profile.Primary)).
		Int("candidates", len(pool.Items)).
		Int("returned", len(entries)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations computed")

	return &Recommendation{
		UserID:        userID,
		Profile:       profile,
		Entries:       entries,
		Source:        source,
		PoolUpdatedAt: pool.UpdatedAt,
		BadgeCount:    len(bundle.Badges),
		GroupCount:    len(bundle.Groups),
		Diagnostics:   diag,
	}, nil
}

// loadPool reads the cached snapshot, falling back to a live build when
// the cache is missing or unreadable.
func (e *Engine) loadPool(ctx context.Context) (*models.CandidatePool, string, error) {
	snapshot, err := e.pool.Snapshot(ctx)
	if err == nil && len(snapshot.Items) > 0 {
		metrics.CacheHits.WithLabelValues("pool").Inc()
		return snapshot, SourcePool, nil
	}
	metrics.CacheMisses.WithLabelValues("pool").Inc()

	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("cached pool unavailable, building live")
	} else {
		logging.Ctx(ctx).Warn().Msg("cached pool empty, building live")
	}

	live, liveErr := e.pool.Live(ctx)
	if liveErr != nil {
		return nil, "", liveErr
	}
	return live, SourceLiveFallback, nil
}

// scoreAndRank scores every candidate, sorts descending and truncates.
// Ties break by live player count, then universe ID, so output order is
// fully deterministic.
func (e *Engine) scoreAndRank(items []models.ContentItem, profile archetype.Result, limit int, now time.Time) []models.RecommendationEntry {
	reason := archetype.ReasonFor(profile.Primary)

	entries := make([]models.RecommendationEntry, 0, len(items))
	for _, item := range items {
		score, matched := e.scorer.Score(item, profile.Scores, now)

		names := make([]string, len(matched))
		for i, key := range matched {
			names[i] = string(key)
		}

		entries = append(entries, models.RecommendationEntry{
			Item:              item,
			Score:             score,
			MatchedArchetypes: names,
			Reason:            reason,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Item.Playing != entries[j].Item.Playing {
			return entries[i].Item.Playing > entries[j].Item.Playing
		}
		return entries[i].Item.UniverseID < entries[j].Item.UniverseID
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
