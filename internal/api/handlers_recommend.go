// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robprofile/robprofile/internal/models"
	"github.com/robprofile/robprofile/internal/recommend"
)

// maxRecommendLimit caps the limit query parameter.
const maxRecommendLimit = 50

// recommendResponse is the recommend endpoint payload.
type recommendResponse struct {
	UserID          int64                        `json:"userId"`
	Basis           recommendBasis               `json:"basis"`
	Recommendations []models.RecommendationEntry `json:"recommendations"`
	Source          string                       `json:"source"`
	UpdatedAt       time.Time                    `json:"updatedAt"`
}

// recommendBasis summarizes the profile the ranking was based on.
type recommendBasis struct {
	Primary    string             `json:"primary"`
	Secondary  string             `json:"secondary"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// handleRecommend serves GET /api/recommend/{userId}.
//
// The response is built from the cached pool when available; otherwise
// the live fallback path runs and the response carries the shorter
// cache hint and the live_fallback source label.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "userId must be a positive numeric Roblox ID", err)
		return
	}

	limit := getIntParam(r, "limit", s.cfg.Recommend.TopK)
	if limit <= 0 || limit > maxRecommendLimit {
		limit = s.cfg.Recommend.TopK
	}

	rec, err := s.engine.Recommend(r.Context(), userID, limit)
	if err != nil {
		respondClassified(w, err)
		return
	}

	maxAge := s.cfg.Recommend.ResponseMaxAge
	if rec.Source == recommend.SourceLiveFallback {
		maxAge = s.cfg.Recommend.LiveResponseMaxAge
	}

	respondJSON(w, http.StatusOK, maxAge, newResponse(recommendResponse{
		UserID:          userID,
		Basis:           basisFrom(rec),
		Recommendations: rec.Entries,
		Source:          rec.Source,
		UpdatedAt:       rec.PoolUpdatedAt,
	}, start))
}

func basisFrom(rec *recommend.Recommendation) recommendBasis {
	scores := make(map[string]float64, len(rec.Profile.Scores))
	for key, score := range rec.Profile.Scores {
		scores[string(key)] = score
	}
	return recommendBasis{
		Primary:    string(rec.Profile.Primary),
		Secondary:  string(rec.Profile.Secondary),
		Confidence: rec.Profile.Confidence,
		Scores:     scores,
	}
}
