// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package api implements the HTTP surface of the RobProfile server.
//
// All endpoints respond with the APIResponse envelope. Pipeline failures
// map onto the failure taxonomy: only invalid caller input produces a
// 400; everything else degrades or reports an upstream problem.
package api

import (
	"context"
	"time"

	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/models"
	"github.com/robprofile/robprofile/internal/recommend"
	"github.com/robprofile/robprofile/internal/roblox"
)

// Recommender runs the recommendation pipeline for a user.
type Recommender interface {
	Recommend(ctx context.Context, userID int64, limit int) (*recommend.Recommendation, error)
}

// PoolAdmin exposes pool maintenance operations to the admin and debug
// endpoints.
type PoolAdmin interface {
	Refresh(ctx context.Context) models.RefreshStatus
	Status(ctx context.Context) (*models.RefreshStatus, error)
	Snapshot(ctx context.Context) (*models.CandidatePool, error)
}

// UserDirectory exposes the user-facing Roblox lookups the handlers
// need. Implemented by roblox.Client.
type UserDirectory interface {
	UserProfile(ctx context.Context, diag *models.Diagnostics, userID int64) (*models.Profile, error)
	FetchSignals(ctx context.Context, userID int64) (models.SignalBundle, models.Diagnostics)
	AvatarHeadshot(ctx context.Context, userID int64) (string, error)
	ResolveUsernames(ctx context.Context, usernames []string) ([]roblox.ResolvedUser, error)
	SearchUsers(ctx context.Context, keyword string, limit int) ([]roblox.ResolvedUser, error)
}

// Server holds the handler dependencies.
type Server struct {
	cfg       *config.Config
	engine    Recommender
	pool      PoolAdmin
	directory UserDirectory
	version   string
	startTime time.Time
}

// NewServer wires a Server from its collaborators.
func NewServer(cfg *config.Config, engine Recommender, pool PoolAdmin, directory UserDirectory, version string) *Server {
	return &Server{
		cfg:       cfg,
		engine:    engine,
		pool:      pool,
		directory: directory,
		version:   version,
		startTime: time.Now(),
	}
}

// newResponse builds a success envelope with timing metadata.
func newResponse(data interface{}, start time.Time) *models.APIResponse {
	return &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	}
}
