// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package api

import (
	"net/http"
	"time"

	"github.com/robprofile/robprofile/internal/models"
)

// handleHealth serves GET /health: liveness plus pool visibility.
// The service is healthy even without a pool; recommendations degrade
// to the live path in that state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	health := models.HealthStatus{
		Status:  "healthy",
		Version: s.version,
		Uptime:  time.Since(s.startTime).Seconds(),
	}

	if snapshot, err := s.pool.Snapshot(r.Context()); err == nil {
		health.CacheReady = true
		health.PoolItems = snapshot.Count
		updatedAt := snapshot.UpdatedAt
		health.PoolUpdatedAt = &updatedAt
	}

	respondJSON(w, http.StatusOK, 0, newResponse(health, start))
}

// handleReady serves GET /health/ready for orchestration probes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondJSON(w, http.StatusOK, 0, newResponse(map[string]string{"status": "ready"}, start))
}
