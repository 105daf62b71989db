// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package pool

import (
	"context"
	"time"

	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/logging"
)

// RefreshService periodically rebuilds the candidate pool. It implements
// suture.Service and is restarted by the supervision tree on panic or
// unexpected return.
type RefreshService struct {
	manager *Manager
	cfg     config.PoolConfig
}

// NewRefreshService creates the background refresh service.
func NewRefreshService(manager *Manager, cfg config.PoolConfig) *RefreshService {
	return &RefreshService{manager: manager, cfg: cfg}
}

// Serve runs the refresh loop until ctx is cancelled.
func (s *RefreshService) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", s.cfg.RefreshInterval).
		Bool("on_startup", s.cfg.RefreshOnStartup).
		Msg("pool refresh service started")

	if s.cfg.RefreshOnStartup {
		s.refreshIfStale(ctx)
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("pool refresh service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.manager.Refresh(ctx)
		}
	}
}

// refreshIfStale skips the startup refresh when a fresh snapshot already
// exists, so rolling restarts do not hammer upstream.
func (s *RefreshService) refreshIfStale(ctx context.Context) {
	snapshot, err := s.manager.Snapshot(ctx)
	if err == nil && time.Since(snapshot.UpdatedAt) < s.cfg.RefreshInterval {
		logging.Info().
			Time("updated_at", snapshot.UpdatedAt).
			Msg("cached pool still fresh, skipping startup refresh")
		return
	}
	s.manager.Refresh(ctx)
}

// String names the service in supervisor logs.
func (s *RefreshService) String() string {
	return "pool-refresh-service"
}
