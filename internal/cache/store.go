// Package cache persists raw tables on disk so a fetch target is
// scraped at most once. Entries are created on first success, read on
// every later request and only ever removed by hand.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ciciatech/projeto-bruno/internal/table"
)

// Store is a one-file-per-key JSON cache. It is read-then-write with
// no locking: a single process per fetch target is assumed, and
// concurrent invocations for the same key may race.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a cache rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get returns the cached table for key. A missing or unreadable entry
// is a miss; corrupt entries are logged and treated as absent.
func (s *Store) Get(key string) (*table.Table, bool) {
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	tbl, err := table.Decode(f)
	if err != nil {
		s.logger.Warn("cache entry unreadable, ignoring",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	return tbl, true
}

// Put persists the table under key with write-then-rename semantics
// so readers never observe a partial entry.
func (s *Store) Put(key string, tbl *table.Table) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tbl.Encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}
	return nil
}
