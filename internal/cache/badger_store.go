// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/robprofile/robprofile/internal/logging"
)

// keyPrefix namespaces all RobProfile entries inside the badger database.
const keyPrefix = "robprofile:"

// BadgerStore implements Store using BadgerDB for durable storage.
// TTLs map directly onto badger entry TTLs, so expiry needs no sweeper.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts badger's logger interface onto zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{})   { logging.Error().Msgf(format, args...) }
func (badgerLogger) Warningf(format string, args ...interface{}) { logging.Warn().Msgf(format, args...) }
func (badgerLogger) Infof(format string, args ...interface{})    { logging.Debug().Msgf(format, args...) }
func (badgerLogger) Debugf(format string, args ...interface{})   { logging.Debug().Msgf(format, args...) }

// OpenBadger opens (or creates) a badger database at path and wraps it in
// a BadgerStore. An empty path opens an in-memory badger instance.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{})
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}

	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already-open badger database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get returns the value for key, or ErrNotFound if absent or expired.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores value under key with the given ttl. Zero ttl stores forever.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes key. Absent keys are a no-op.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}

// Close closes the underlying badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// RunGC runs one round of badger value-log garbage collection. Badger
// returns ErrNoRewrite when there is nothing to collect; that is not an
// error for callers.
func (s *BadgerStore) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// StartGC runs RunGC on the given interval until ctx is cancelled.
// Intended to be launched as a goroutine from the supervisor.
func (s *BadgerStore) StartGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("badger value-log GC failed")
			}
		}
	}
}
