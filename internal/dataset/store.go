package dataset

import (
	"context"
	"log/slog"
	"sync"
)

type (
	// Store memoizes raw tables by name for the process lifetime. It is the
	// only writer to the in-memory table cache; derived views and metric
	// results are transient copies built on top of it.
	//
	// Concurrent first loads of the same table are collapsed to a single
	// Source.Load call: later callers block on the in-flight load and
	// observe its result. Failed loads are not memoized, so a table that
	// appears after a deploy is picked up on the next call.
	Store struct {
		source Source
		logger *slog.Logger

		mu      sync.Mutex
		entries map[string]*loadEntry
	}

	loadEntry struct {
		once  sync.Once
		table *RawTable
		err   error
	}
)

// NewStore creates a memoizing table store over the given source.
func NewStore(source Source, logger *slog.Logger) *Store {
	return &Store{
		source:  source,
		logger:  logger,
		entries: make(map[string]*loadEntry),
	}
}

// Load returns the named table, reading it from the source at most once per
// cache generation. Tables are all-or-nothing; there is no partial caching.
func (s *Store) Load(ctx context.Context, name string) (*RawTable, error) {
	s.mu.Lock()

	entry, ok := s.entries[name]
	if !ok {
		entry = &loadEntry{}
		s.entries[name] = entry
	}

	s.mu.Unlock()

	entry.once.Do(func() {
		entry.table, entry.err = s.source.Load(ctx, name)

		if entry.err == nil {
			s.logger.Info("Loaded dataset table",
				slog.String("table", name),
				slog.Int("rows", entry.table.Len()),
			)
		}
	})

	if entry.err != nil {
		s.mu.Lock()
		// Evict the failed load so the next caller retries the source.
		if s.entries[name] == entry {
			delete(s.entries, name)
		}
		s.mu.Unlock()

		return nil, entry.err
	}

	return entry.table, nil
}

// Clear evicts all cached tables, forcing the next Load of each table to
// re-read from the backing source.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*loadEntry)
	s.mu.Unlock()

	s.logger.Info("Dataset table cache cleared")
}

// Cached reports how many tables are currently memoized. Snapshot only;
// concurrent loads may change the count immediately after.
func (s *Store) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
