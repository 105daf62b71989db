// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package pool

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/robprofile/robprofile/internal/cache"
	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/logging"
	"github.com/robprofile/robprofile/internal/metrics"
	"github.com/robprofile/robprofile/internal/models"
	"github.com/robprofile/robprofile/internal/tags"
)

// targetSortMarkers select the discovery sorts worth consuming. A sort
// qualifies when its token or name contains any marker.
var targetSortMarkers = []string{"Popular", "PopularWorldwide", "TopRated", "MostEngaging", "Trending"}

// fallbackSortToken is the games list sort used when the explore API
// yields nothing.
const fallbackSortToken = "GamesPageMostEngagingSort"

// fallbackMaxRows is the page size for the games list fallback.
const fallbackMaxRows = 50

// Discoverer is the upstream surface the pool consumes. Implemented by
// roblox.Client; narrowed here for testability.
type Discoverer interface {
	ExploreSorts(ctx context.Context, diag *models.Diagnostics, sessionID string) ([]byte, error)
	ExploreSortContent(ctx context.Context, diag *models.Diagnostics, sortID, sessionID string) ([]byte, error)
	GamesList(ctx context.Context, diag *models.Diagnostics, sortToken string, maxRows int) ([]byte, error)
	GamesMetadata(ctx context.Context, diag *models.Diagnostics, universeIDs []int64) ([]byte, error)
	GameIcons(ctx context.Context, diag *models.Diagnostics, universeIDs []int64) (map[int64]string, error)
}

// Manager builds, caches and serves candidate pools.
type Manager struct {
	cfg    config.PoolConfig
	client Discoverer
	store  cache.Store

	// refreshMu serializes refreshes; concurrent triggers collapse into
	// waiting for the running one.
	refreshMu sync.Mutex
}

// NewManager wires a Manager from its collaborators.
func NewManager(cfg config.PoolConfig, client Discoverer, store cache.Store) *Manager {
	return &Manager{cfg: cfg, client: client, store: store}
}

// Snapshot returns the cached pool. A corrupt cached payload classifies
// as parse corruption so callers fall back to the live path.
func (m *Manager) Snapshot(ctx context.Context) (*models.CandidatePool, error) {
	data, err := m.store.Get(ctx, cache.KeyGamePool)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, models.NewClassifiedError(models.ClassDataEmpty, "pool_snapshot", err)
		}
		return nil, models.NewClassifiedError(models.ClassUpstreamUnavailable, "pool_snapshot", err)
	}

	var pool models.CandidatePool
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "pool_snapshot", err)
	}
	return &pool, nil
}

// errNoLiveCandidates reports a live fetch that answered but yielded no
// eligible items.
var errNoLiveCandidates = errors.New("live fetch yielded no eligible candidates")

// Live fetches a small candidate set directly from upstream, bypassing
// the cached pool. It runs on the request path, so it stays cheap: one
// games list page and one metadata batch, no explore crawl and no icon
// resolution.
func (m *Manager) Live(ctx context.Context) (*models.CandidatePool, error) {
	diag := &models.Diagnostics{}

	data, err := m.client.GamesList(ctx, diag, fallbackSortToken, fallbackMaxRows)
	if err != nil {
		return nil, models.NewClassifiedError(models.ClassUpstreamUnavailable, "pool_live", err)
	}
	seeds, err := extractSeeds(data)
	if err != nil {
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "pool_live", err)
	}
	if len(seeds) == 0 {
		return nil, models.NewClassifiedError(models.ClassDataEmpty, "pool_live", errNoLiveCandidates)
	}

	ids := make([]int64, 0, len(seeds))
	for _, s := range seeds {
		ids = append(ids, s.UniverseID)
	}
	if len(ids) > m.cfg.MetadataBatchSize {
		ids = ids[:m.cfg.MetadataBatchSize]
	}

	meta, err := m.client.GamesMetadata(ctx, diag, ids)
	if err != nil {
		return nil, models.NewClassifiedError(models.ClassUpstreamUnavailable, "pool_live", err)
	}
	entries, err := extractMetadata(meta)
	if err != nil {
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "pool_live", err)
	}

	items := m.filterAndTag(entries)
	if len(items) == 0 {
		return nil, models.NewClassifiedError(models.ClassDataEmpty, "pool_live", errNoLiveCandidates)
	}

	logging.Ctx(ctx).Info().
		Int("raw", len(entries)).
		Int("filtered", len(items)).
		Msg("live candidate set built")

	return &models.CandidatePool{
		UpdatedAt: time.Now(),
		Source:    "live",
		Count:     len(items),
		Items:     items,
	}, nil
}

// Refresh rebuilds the candidate pool from upstream and persists both
// the snapshot and the refresh status record. It never panics or returns
// an error; the outcome is fully described by the returned status.
func (m *Manager) Refresh(ctx context.Context) models.RefreshStatus {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	start := time.Now()
	diag := &models.Diagnostics{}
	status := models.RefreshStatus{
		Timestamp: start,
		Sources:   make(map[string]models.SourceStats),
	}

	seeds := m.discover(ctx, diag, &status)
	status.RawCount = len(seeds)
	if len(seeds) == 0 {
		// Upstream answering with zero records is an emptiness outcome;
		// only a failure of every source call is an availability one.
		if anySourceSucceeded(status.Sources) {
			m.finishRefresh(ctx, &status, diag, start, models.ClassDataEmpty,
				"no candidates discovered from any source")
		} else {
			m.finishRefresh(ctx, &status, diag, start, models.ClassUpstreamUnavailable,
				"all discovery sources failed")
		}
		return status
	}

	items := m.enrich(ctx, diag, seeds)
	if len(items) == 0 {
		m.finishRefresh(ctx, &status, diag, start, models.ClassUpstreamUnavailable,
			"metadata enrichment produced no items")
		return status
	}

	filtered := m.filterAndTag(items)
	status.FilteredCount = len(filtered)
	if len(filtered) == 0 {
		// Upstream answered fine; the activity gate just excluded everything.
		m.finishRefresh(ctx, &status, diag, start, models.ClassDataEmpty,
			"all candidates fell below the activity threshold")
		return status
	}

	m.resolveIcons(ctx, diag, filtered)

	pool := &models.CandidatePool{
		UpdatedAt: start,
		Source:    "refresh",
		Count:     len(filtered),
		Items:     filtered,
	}
	if err := cache.SetJSON(ctx, m.store, cache.KeyGamePool, pool, m.cfg.PoolTTL); err != nil {
		m.finishRefresh(ctx, &status, diag, start, models.ClassUpstreamUnavailable,
			"pool write failed: "+err.Error())
		return status
	}

	status.Success = true
	status.Diagnostics = diag
	m.writeStatus(ctx, &status)
	metrics.RecordPoolRefresh(time.Since(start), status.RawCount, status.FilteredCount, "")

	logging.Ctx(ctx).Info().
		Int("raw", status.RawCount).
		Int("filtered", status.FilteredCount).
		Dur("elapsed", time.Since(start)).
		Msg("candidate pool refreshed")
	return status
}

// finishRefresh records a failed refresh in metrics, logs and the status
// record.
func (m *Manager) finishRefresh(ctx context.Context, status *models.RefreshStatus, diag *models.Diagnostics, start time.Time, class models.FailureClass, msg string) {
	status.Success = false
	status.Error = class.String() + ": " + msg
	status.Diagnostics = diag
	m.writeStatus(ctx, status)
	metrics.RecordPoolRefresh(time.Since(start), status.RawCount, status.FilteredCount, class.String())

	logging.Ctx(ctx).Error().
		Str("class", class.String()).
		Str("reason", msg).
		Int("raw", status.RawCount).
		Msg("candidate pool refresh failed")
}

// anySourceSucceeded reports whether at least one discovery call got an
// answer from upstream.
func anySourceSucceeded(sources map[string]models.SourceStats) bool {
	for _, s := range sources {
		if s.Succeeded > 0 {
			return true
		}
	}
	return false
}

// writeStatus persists the refresh status record; failures only log.
func (m *Manager) writeStatus(ctx context.Context, status *models.RefreshStatus) {
	if err := cache.SetJSON(ctx, m.store, cache.KeyRefreshStatus, status, m.cfg.StatusTTL); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to persist refresh status")
	}
}

// Status returns the persisted outcome of the last refresh.
func (m *Manager) Status(ctx context.Context) (*models.RefreshStatus, error) {
	var status models.RefreshStatus
	if err := cache.GetJSON(ctx, m.store, cache.KeyRefreshStatus, &status); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, models.NewClassifiedError(models.ClassDataEmpty, "pool_status", err)
		}
		return nil, models.NewClassifiedError(models.ClassParseCorrupt, "pool_status", err)
	}
	return &status, nil
}

// discover collects deduplicated seeds from the explore API, falling
// back to the games list when the explore path yields nothing.
func (m *Manager) discover(ctx context.Context, diag *models.Diagnostics, status *models.RefreshStatus) []seed {
	seen := make(map[int64]struct{})
	var seeds []seed

	exploreStats := models.SourceStats{}
	sessionID := uuid.New().String()

	exploreStats.Attempted++
	if data, err := m.client.ExploreSorts(ctx, diag, sessionID); err == nil {
		exploreStats.Succeeded++
		refs, parseErr := extractSorts(data)
		if parseErr != nil {
			logging.Ctx(ctx).Warn().Err(parseErr).Msg("explore sorts payload unreadable")
		}

		for _, ref := range m.selectSorts(refs) {
			exploreStats.Attempted++
			content, err := m.client.ExploreSortContent(ctx, diag, ref.ID, sessionID)
			if err != nil {
				continue
			}
			exploreStats.Succeeded++

			sortSeeds, err := extractSeeds(content)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("sort", ref.ID).Msg("sort content unreadable")
				continue
			}
			for _, s := range sortSeeds {
				if _, ok := seen[s.UniverseID]; ok {
					continue
				}
				seen[s.UniverseID] = struct{}{}
				seeds = append(seeds, s)
				exploreStats.Items++
			}
		}
	} else {
		logging.Ctx(ctx).Warn().Err(err).Msg("explore sorts unavailable")
	}
	status.Sources["explore"] = exploreStats

	if len(seeds) > 0 {
		return seeds
	}

	// Fallback source: games list most-engaging sort.
	listStats := models.SourceStats{Attempted: 1}
	if data, err := m.client.GamesList(ctx, diag, fallbackSortToken, fallbackMaxRows); err == nil {
		listStats.Succeeded++
		listSeeds, parseErr := extractSeeds(data)
		if parseErr == nil {
			for _, s := range listSeeds {
				if _, ok := seen[s.UniverseID]; ok {
					continue
				}
				seen[s.UniverseID] = struct{}{}
				seeds = append(seeds, s)
				listStats.Items++
			}
		}
	} else {
		logging.Ctx(ctx).Warn().Err(err).Msg("games list fallback unavailable")
	}
	status.Sources["games_list"] = listStats

	return seeds
}

// selectSorts picks up to MaxSorts target sorts, or the first available
// sort when no marker matches.
func (m *Manager) selectSorts(refs []sortRef) []sortRef {
	var selected []sortRef
	for _, ref := range refs {
		if len(selected) >= m.cfg.MaxSorts {
			break
		}
		for _, marker := range targetSortMarkers {
			if strings.Contains(ref.ID, marker) || strings.Contains(ref.Name, marker) {
				selected = append(selected, ref)
				break
			}
		}
	}
	if len(selected) == 0 && len(refs) > 0 {
		selected = refs[:1]
	}
	return selected
}

// enrich fetches metadata for seeds in batches with bounded concurrency.
// Failed batches are skipped, not fatal.
func (m *Manager) enrich(ctx context.Context, diag *models.Diagnostics, seeds []seed) []metadataEntry {
	batches := make([][]int64, 0, len(seeds)/m.cfg.MetadataBatchSize+1)
	for i := 0; i < len(seeds); i += m.cfg.MetadataBatchSize {
		end := i + m.cfg.MetadataBatchSize
		if end > len(seeds) {
			end = len(seeds)
		}
		ids := make([]int64, 0, end-i)
		for _, s := range seeds[i:end] {
			ids = append(ids, s.UniverseID)
		}
		batches = append(batches, ids)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([][]metadataEntry, len(batches))
		diags   = make([]models.Diagnostics, len(batches))
		sem     = make(chan struct{}, m.cfg.EnrichConcurrency)
	)

	for i, batch := range batches {
		wg.Add(1)
		go func(i int, ids []int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := m.client.GamesMetadata(ctx, &diags[i], ids)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Int("batch", i).Msg("metadata batch failed")
				return
			}
			entries, err := extractMetadata(data)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Int("batch", i).Msg("metadata batch unreadable")
				return
			}
			mu.Lock()
			results[i] = entries
			mu.Unlock()
		}(i, batch)
	}
	wg.Wait()

	// Merge per-goroutine diagnostics and results in batch order.
	var merged []metadataEntry
	for i := range batches {
		merged = append(merged, results[i]...)
		diag.Requests = append(diag.Requests, diags[i].Requests...)
		diag.Errors = append(diag.Errors, diags[i].Errors...)
	}
	return merged
}

// filterAndTag applies the activity gate, truncates descriptions, tags
// items and builds the final content list.
func (m *Manager) filterAndTag(entries []metadataEntry) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(entries))
	for _, e := range entries {
		if !m.eligible(e) {
			continue
		}

		description := e.Description
		if m.cfg.DescriptionLimit > 0 && len(description) > m.cfg.DescriptionLimit {
			cut := m.cfg.DescriptionLimit
			for cut > 0 && !utf8.RuneStart(description[cut]) {
				cut--
			}
			description = description[:cut]
		}

		item := models.ContentItem{
			UniverseID:  e.UniverseID,
			PlaceID:     e.PlaceID,
			Name:        e.Name,
			Description: description,
			CreatorName: e.CreatorName,
			Genre:       e.Genre,
			Playing:     e.Playing,
			Visits:      e.Visits,
			Favorites:   e.Favorites,
			MaxPlayers:  e.MaxPlayers,
			Updated:     e.Updated,
			GameURL:     gameURL(e.PlaceID),
		}
		item.Tags = tags.Extract(item)
		items = append(items, item)
	}
	return items
}

// eligible applies the inclusive activity threshold, with the optional
// lifetime-visits override when enabled.
func (m *Manager) eligible(e metadataEntry) bool {
	if e.Playing >= m.cfg.MinActivity {
		return true
	}
	return m.cfg.VisitsFallbackEnabled && e.Visits >= m.cfg.MinVisitsFallback
}

// resolveIcons fills IconURL for items in batches. Failures leave the
// field empty.
func (m *Manager) resolveIcons(ctx context.Context, diag *models.Diagnostics, items []models.ContentItem) {
	const iconBatchSize = 100

	for i := 0; i < len(items); i += iconBatchSize {
		end := i + iconBatchSize
		if end > len(items) {
			end = len(items)
		}

		ids := make([]int64, 0, end-i)
		for _, item := range items[i:end] {
			ids = append(ids, item.UniverseID)
		}

		icons, err := m.client.GameIcons(ctx, diag, ids)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("icon batch failed")
			continue
		}
		for j := i; j < end; j++ {
			if url, ok := icons[items[j].UniverseID]; ok {
				items[j].IconURL = url
			}
		}
	}
}

// gameURL builds the canonical game page URL.
func gameURL(placeID int64) string {
	if placeID == 0 {
		return ""
	}
	return "https://www.roblox.com/games/" + strconv.FormatInt(placeID, 10)
}
