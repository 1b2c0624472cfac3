// Package store provides Badger-backed persistence for the Relay server.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/relaychat/relay-server/internal/domain"
)

// EventEmitter is the interface for broadcasting store changes.
// The store uses this to publish events without depending on the SSE layer.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter as a no-op.
func (NoopEmitter) Emit(_ any) {}

// SearchIndexer keeps the search index in sync with store changes without
// the store depending on the search implementation.
type SearchIndexer interface {
	IndexProfile(ctx context.Context, user *domain.User) error
	DeleteProfile(ctx context.Context, userID string) error
	IndexGroup(ctx context.Context, group *domain.Group) error
	DeleteGroup(ctx context.Context, groupID string) error
}

// NoopSearchIndexer is a no-op SearchIndexer for testing.
type NoopSearchIndexer struct{}

// IndexProfile is a no-op.
func (NoopSearchIndexer) IndexProfile(context.Context, *domain.User) error { return nil }

// DeleteProfile is a no-op.
func (NoopSearchIndexer) DeleteProfile(context.Context, string) error { return nil }

// IndexGroup is a no-op.
func (NoopSearchIndexer) IndexGroup(context.Context, *domain.Group) error { return nil }

// DeleteGroup is a no-op.
func (NoopSearchIndexer) DeleteGroup(context.Context, string) error { return nil }

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	eventEmitter EventEmitter

	// Set via SetSearchIndexer after creation to avoid a circular
	// dependency between store and search construction.
	searchIndexer SearchIndexer
}

// New opens a store at the given path. The emitter is required; pass
// NoopEmitter in tests.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Sync writes to survive crashes

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	s := &Store{
		db:            db,
		logger:        logger,
		eventEmitter:  emitter,
		searchIndexer: NoopSearchIndexer{},
	}

	if logger != nil {
		logger.Info("Badger database opened", "path", path)
	}

	return s, nil
}

// SetSearchIndexer wires the search index into store writes.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// nowMillis returns the current time in Unix milliseconds, the timestamp
// unit used throughout the domain model.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// get reads and unmarshals the value at key into out.
func (s *Store) get(key []byte, out any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// set marshals value and writes it at key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists reports whether key is present.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// iteratePrefix invokes fn with each value under prefix, in key order.
// Returning false from fn stops the iteration.
func (s *Store) iteratePrefix(prefix []byte, fn func(val []byte) (bool, error)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var stop bool
			err := it.Item().Value(func(val []byte) error {
				more, err := fn(val)
				stop = !more
				return err
			})
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
		return nil
	})
}
