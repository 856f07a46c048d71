package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore is a durable Store backed by BadgerDB. Entries survive
// process restarts, matching the browser-side persistent cache the
// service replaces.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a Badger database rooted at dir.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{db: db, logger: logger}, nil
}

// Get returns the value stored under key. Backend failures are logged
// and reported as misses.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

// Set stores value under key.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		s.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Delete removes key.
func (s *BadgerStore) Delete(_ context.Context, key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		s.logger.Warn("cache delete failed", "key", key, "error", err)
	}
}

// Flush drops every entry in the store.
func (s *BadgerStore) Flush(_ context.Context) {
	if err := s.db.DropAll(); err != nil {
		s.logger.Warn("cache flush failed", "error", err)
	}
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
