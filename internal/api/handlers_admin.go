// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/robprofile/robprofile/internal/logging"
	"github.com/robprofile/robprofile/internal/models"
)

// handleAdminRefresh serves POST /api/admin/refresh-games. It triggers a
// synchronous pool rebuild. When a refresh key is configured the caller
// must present it in the X-Refresh-Key header.
func (s *Server) handleAdminRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if key := s.cfg.Pool.RefreshKey; key != "" {
		provided := r.Header.Get("X-Refresh-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			respondError(w, http.StatusForbidden, "FORBIDDEN", "Invalid refresh key", nil)
			return
		}
	}

	logging.Ctx(r.Context()).Info().Msg("manual pool refresh triggered")
	status := s.pool.Refresh(r.Context())

	httpStatus := http.StatusOK
	if !status.Success {
		httpStatus = http.StatusBadGateway
	}
	respondJSON(w, httpStatus, 0, newResponse(status, start))
}

// handleDebugPoolStatus serves GET /api/debug/pool-status: the persisted
// outcome of the last refresh plus current pool dimensions.
func (s *Server) handleDebugPoolStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	status, err := s.pool.Status(ctx)
	if err != nil {
		var classified *models.ClassifiedError
		if errors.As(err, &classified) && classified.Class == models.ClassDataEmpty {
			respondError(w, http.StatusNotFound, "NO_STATUS", "No refresh has run yet", nil)
			return
		}
		respondClassified(w, err)
		return
	}

	poolInfo := map[string]interface{}{"available": false}
	if snapshot, err := s.pool.Snapshot(ctx); err == nil {
		poolInfo = map[string]interface{}{
			"available":  true,
			"count":      snapshot.Count,
			"updated_at": snapshot.UpdatedAt,
		}
	}

	respondJSON(w, http.StatusOK, 0, newResponse(map[string]interface{}{
		"last_refresh": status,
		"pool":         poolInfo,
	}, start))
}
