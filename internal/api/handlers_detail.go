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

// detailResponse combines account info, archetype basis and the longer
// recommendation list into one payload for profile pages.
type detailResponse struct {
	Profile         *models.Profile              `json:"profile"`
	AvatarURL       string                       `json:"avatarUrl,omitempty"`
	BadgeCount      int                          `json:"badgeCount"`
	GroupCount      int                          `json:"groupCount"`
	Archetype       recommendBasis               `json:"archetype"`
	Recommendations []models.RecommendationEntry `json:"recommendations"`
	Source          string                       `json:"source"`
	UpdatedAt       time.Time                    `json:"updatedAt"`
}

// handleDetail serves GET /api/detail/{userId}: the full analysis with
// the larger recommendation list. A missing user is a 404; degraded
// signal sources still produce a response.
func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
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

	rec, err := s.engine.Recommend(ctx, userID, s.cfg.Recommend.DetailLimit)
	if err != nil {
		respondClassified(w, err)
		return
	}

	avatarURL, err := s.directory.AvatarHeadshot(ctx, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Int64("user_id", userID).Err(err).Msg("avatar fetch degraded")
	}

	respondJSON(w, http.StatusOK, s.cfg.Recommend.ResponseMaxAge, newResponse(detailResponse{
		Profile:         profile,
		AvatarURL:       avatarURL,
		BadgeCount:      rec.BadgeCount,
		GroupCount:      rec.GroupCount,
		Archetype:       basisFrom(rec),
		Recommendations: rec.Entries,
		Source:          rec.Source,
		UpdatedAt:       rec.PoolUpdatedAt,
	}, start))
}
