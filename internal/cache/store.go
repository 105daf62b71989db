// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package cache provides the TTL key-value snapshot store backing the
// candidate pool and refresh status records.
//
// Two implementations exist: a BadgerDB-backed store for production
// deployments that survive restarts, and an in-memory store for tests
// and ephemeral deployments. Both honor per-entry TTLs; an expired entry
// is indistinguishable from a missing one.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned when a key is absent or its TTL has expired.
var ErrNotFound = errors.New("cache: key not found")

// Well-known cache keys. The pool snapshot and status record are the only
// durable state the service keeps.
const (
	KeyGamePool      = "games_pool_v2"
	KeyRefreshStatus = "games_pool_status"
)

// Store is a TTL key-value store for JSON snapshots.
type Store interface {
	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}

// GetJSON reads key from s and unmarshals it into v.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SetJSON marshals v and stores it under key with the given ttl.
func SetJSON(ctx context.Context, s Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data, ttl)
}
