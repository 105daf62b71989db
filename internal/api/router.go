// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robprofile/robprofile/internal/metrics"
	"github.com/robprofile/robprofile/internal/middleware"
)

// Router assembles the HTTP route tree. Health and metrics endpoints sit
// outside the rate limited /api group so probes and scrapers are never
// throttled alongside client traffic.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.corsHandler())

	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/recommend/{userId}", s.handleRecommend)
		r.Get("/analyze/{userId}", s.handleAnalyze)
		r.Get("/detail/{userId}", s.handleDetail)

		r.Get("/users/resolve", s.handleResolveUsers)
		r.Get("/users/search", s.handleSearchUsers)

		r.Post("/admin/refresh-games", s.handleAdminRefresh)
		r.Get("/debug/pool-status", s.handleDebugPoolStatus)
	})

	return r
}

// corsHandler builds the CORS middleware from configuration. CORS runs
// globally so OPTIONS preflight requests are handled for every route.
func (s *Server) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Refresh-Key"},
		ExposedHeaders: []string{"X-Request-ID", "ETag"},
		MaxAge:         300,
	})
}

// rateLimiter builds the per-IP rate limiting middleware for the /api
// group. Disabled limiting returns a pass-through.
func (s *Server) rateLimiter() func(http.Handler) http.Handler {
	sec := s.cfg.Security
	if sec.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		sec.RateLimitReqs,
		sec.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				endpoint = rctx.RoutePattern()
			}
			metrics.APIRateLimitHits.WithLabelValues(endpoint).Inc()
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
		}),
	)
}
