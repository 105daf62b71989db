// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package api

import (
	"net/http"
	"strings"
	"time"
)

// maxUsernameLookups caps the bulk resolve request size.
const maxUsernameLookups = 10

// defaultSearchLimit bounds user search results.
const defaultSearchLimit = 10

// resolveRequest validates the resolve query parameters.
type resolveRequest struct {
	Usernames []string `validate:"required,min=1,max=10,dive,min=3,max=20"`
}

// searchRequest validates the search query parameters.
type searchRequest struct {
	Keyword string `validate:"required,min=3,max=50"`
	Limit   int    `validate:"min=1,max=25"`
}

// handleResolveUsers serves GET /api/users/resolve?username=a,b,c and
// maps usernames to user IDs.
func (s *Server) handleResolveUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	raw := r.URL.Query().Get("username")
	var usernames []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			usernames = append(usernames, part)
		}
	}
	if len(usernames) > maxUsernameLookups {
		usernames = usernames[:maxUsernameLookups]
	}

	req := resolveRequest{Usernames: usernames}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	resolved, err := s.directory.ResolveUsernames(r.Context(), usernames)
	if err != nil {
		respondClassified(w, err)
		return
	}

	respondJSON(w, http.StatusOK, s.cfg.Recommend.ResponseMaxAge, newResponse(map[string]interface{}{
		"users": resolved,
	}, start))
}

// handleSearchUsers serves GET /api/users/search?keyword=...&limit=N.
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := searchRequest{
		Keyword: strings.TrimSpace(r.URL.Query().Get("keyword")),
		Limit:   getIntParam(r, "limit", defaultSearchLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	results, err := s.directory.SearchUsers(r.Context(), req.Keyword, req.Limit)
	if err != nil {
		respondClassified(w, err)
		return
	}

	respondJSON(w, http.StatusOK, s.cfg.Recommend.ResponseMaxAge, newResponse(map[string]interface{}{
		"users": results,
	}, start))
}
