// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robprofile/robprofile/internal/logging"
	"github.com/robprofile/robprofile/internal/models"
)

// analyzeResponse is the raw-signal payload of the analyze endpoint.
// Everything except the profile is optional and degrades to empty.
type analyzeResponse struct {
	Profile     *models.Profile     `json:"profile"`
	AvatarURL   string              `json:"avatarUrl,omitempty"`
	Badges      []models.Badge      `json:"badges"`
	Groups      []models.Group      `json:"groups"`
	Diagnostics *models.Diagnostics `json:"diagnostics,omitempty"`
}

// handleAnalyze serves GET /api/analyze/{userId}. It returns the raw
// profiling inputs for a user. The profile fetch is the only critical
// dependency; a missing user is a 404.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "userId must be a positive numeric Roblox ID", err)
		return
	}

	diag := &models.Diagnostics{}
	profile, err := s.directory.UserProfile(ctx, diag, userID)
	if err != nil {
		if classified, ok := asClassified(err); ok && classified.Class == models.ClassInvalidInput {
			respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", err)
			return
		}
		respondClassified(w, err)
		return
	}

	bundle, signalDiag := s.directory.FetchSignals(ctx, userID)
	diag.Requests = append(diag.Requests, signalDiag.Requests...)
	diag.Errors = append(diag.Errors, signalDiag.Errors...)

	avatarURL, err := s.directory.AvatarHeadshot(ctx, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Int64("user_id", userID).Err(err).Msg("avatar fetch degraded")
	}

	resp := analyzeResponse{
		Profile:   profile,
		AvatarURL: avatarURL,
		Badges:    bundle.Badges,
		Groups:    bundle.Groups,
	}
	if r.URL.Query().Get("debug") == "1" {
		resp.Diagnostics = diag
	}

	respondJSON(w, http.StatusOK, s.cfg.Recommend.ResponseMaxAge, newResponse(resp, start))
}
