// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package main is the entry point for the RobProfile server.
//
// RobProfile analyzes public Roblox profiles into play archetypes and
// recommends games from a cached candidate pool. The server initializes
// components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml,
//     environment variables)
//  2. Cache: BadgerDB store for the candidate pool, or an in-memory
//     store when no path is configured
//  3. Roblox client: rate limited, circuit-broken HTTP client for the
//     public Roblox APIs
//  4. Pool manager and refresh service: periodic candidate discovery
//  5. Recommendation engine: archetype profiling plus tag scoring
//  6. HTTP server: REST API under a suture supervisor tree
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests, and closes the
// cache before exiting.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robprofile/robprofile/internal/api"
	"github.com/robprofile/robprofile/internal/archetype"
	"github.com/robprofile/robprofile/internal/cache"
	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/logging"
	"github.com/robprofile/robprofile/internal/metrics"
	"github.com/robprofile/robprofile/internal/pool"
	"github.com/robprofile/robprofile/internal/recommend"
	"github.com/robprofile/robprofile/internal/roblox"
	"github.com/robprofile/robprofile/internal/supervisor"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().Str("version", version).Msg("Starting RobProfile server")
	metrics.SetAppInfo(version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Cache close failed")
		}
	}()

	client := roblox.NewClient(cfg.Roblox)
	manager := pool.NewManager(cfg.Pool, client, store)
	profiler := archetype.NewProfiler(cfg.Archetype)
	engine := recommend.NewEngine(cfg.Recommend, profiler, client, manager)

	server := api.NewServer(cfg, engine, manager, client, version)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddPoolService(pool.NewRefreshService(manager, cfg.Pool))
	tree.AddAPIService(supervisor.NewHTTPService(httpServer, 10*time.Second))
	logging.Info().Str("addr", httpServer.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel so the supervisor fully stops.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}

// openStore opens the configured cache backend. An empty path selects
// an in-memory badger instance, which keeps single-binary deployments
// working without a data directory.
func openStore(cfg *config.Config) (cache.Store, error) {
	store, err := cache.OpenBadger(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Path == "" {
		logging.Warn().Msg("No cache path configured, using in-memory store; pool is lost on restart")
	} else {
		logging.Info().Str("path", cfg.Cache.Path).Msg("Badger cache opened")
	}
	go store.StartGC(context.Background(), cfg.Cache.GCInterval)
	return store, nil
}
