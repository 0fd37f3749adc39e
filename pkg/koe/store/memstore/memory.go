package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/cognicore/koe/pkg/koe/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]store.Entry
	stoplist map[string]struct{}
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		entries:  make(map[string]store.Entry),
		stoplist: make(map[string]struct{}),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// GetEntry returns a cached entry by key.
func (s *Store) GetEntry(ctx context.Context, key string) (store.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return store.Entry{}, false, nil
	}
	e.Value = slices.Clone(e.Value)
	return e, true, nil
}

// PutEntry inserts or replaces an entry.
func (s *Store) PutEntry(ctx context.Context, e store.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Value = slices.Clone(e.Value)
	s.entries[e.Key] = e
	return nil
}

// PurgeGenerations drops entries from every generation except keep.
func (s *Store) PurgeGenerations(ctx context.Context, keep string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, e := range s.entries {
		if e.Generation != keep {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// CountEntries reports the number of cached entries.
func (s *Store) CountEntries(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}

// UpsertStoplist replaces the stored stopword set.
func (s *Store) UpsertStoplist(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stoplist = make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		s.stoplist[tok] = struct{}{}
	}
	return nil
}

// Stoplist returns the stored stopwords, sorted.
func (s *Store) Stoplist(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.stoplist))
	for tok := range s.stoplist {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out, nil
}

var _ store.Store = (*Store)(nil)
