// Package preference persists client-local UI preferences in an embedded
// BadgerDB key-value store.
package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/logger"
)

// SortKey is the single entry holding the table sort descriptor.
const SortKey = "employeeTableSort"

// Config holds configuration for the preference store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string
	// InMemory keeps preferences for the lifetime of the process only.
	InMemory bool
}

// Store is a domain.PreferenceStore backed by BadgerDB.
type Store struct {
	db *badger.DB
}

var _ domain.PreferenceStore = (*Store)(nil)

// Open opens (or creates) the preference store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent preferences")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create preference directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadSort returns the persisted sort descriptor. An absent or corrupt entry
// yields the zero descriptor (no sort) and no error.
func (s *Store) LoadSort(ctx context.Context) (domain.SortPreference, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(SortKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.SortPreference{}, nil
	}
	if err != nil {
		return domain.SortPreference{}, fmt.Errorf("read sort preference: %w", err)
	}

	var pref domain.SortPreference
	if err := json.Unmarshal(raw, &pref); err != nil {
		logger.WarnLog(ctx, "Ignoring corrupt sort preference %q: %v", string(raw), err)
		return domain.SortPreference{}, nil
	}
	return pref, nil
}

// SaveSort overwrites the persisted sort descriptor.
func (s *Store) SaveSort(ctx context.Context, pref domain.SortPreference) error {
	raw, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("encode sort preference: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(SortKey), raw)
	}); err != nil {
		return fmt.Errorf("write sort preference: %w", err)
	}
	logger.DebugLog(ctx, "Saved sort preference %s", string(raw))
	return nil
}

// putRaw stores an arbitrary value under key. Used by tests to simulate
// corrupt entries.
func (s *Store) putRaw(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}
