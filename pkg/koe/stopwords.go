package koe

import (
	"context"
	"fmt"

	"github.com/cognicore/koe/pkg/koe/stoplist"
)

// Stopwords returns a snapshot of the active stopword set.
func (e *Engine) Stopwords() *stoplist.Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stops.Clone()
}

// AddStopwords extends the dynamic list. Any change invalidates every
// cached result at once and persists the dynamic list.
func (e *Engine) AddStopwords(ctx context.Context, words ...string) (bool, error) {
	return e.editStopwords(ctx, func(s *stoplist.Set) bool { return s.AddDynamic(words...) })
}

// RemoveStopwords shrinks the dynamic list. Baseline words stay.
func (e *Engine) RemoveStopwords(ctx context.Context, words ...string) (bool, error) {
	return e.editStopwords(ctx, func(s *stoplist.Set) bool { return s.RemoveDynamic(words...) })
}

// SetDynamicStopwords replaces the dynamic list.
func (e *Engine) SetDynamicStopwords(ctx context.Context, words []string) (bool, error) {
	return e.editStopwords(ctx, func(s *stoplist.Set) bool {
		before := s.Fingerprint()
		s.SetDynamic(words)
		return s.Fingerprint() != before
	})
}

// RestoreStopwords loads the dynamic list persisted by earlier edits.
func (e *Engine) RestoreStopwords(ctx context.Context) error {
	words, err := e.store.Stoplist(ctx)
	if err != nil {
		return fmt.Errorf("restore stoplist: %w", err)
	}
	if len(words) == 0 {
		return nil
	}
	_, err = e.SetDynamicStopwords(ctx, words)
	return err
}

func (e *Engine) editStopwords(ctx context.Context, edit func(*stoplist.Set) bool) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !edit(e.stops) {
		return false, nil
	}
	gen := e.generation(e.stops)
	n, err := e.cache.Invalidate(ctx, gen)
	if err != nil {
		return true, fmt.Errorf("invalidate cache: %w", err)
	}
	if err := e.store.UpsertStoplist(ctx, e.stops.Dynamic()); err != nil {
		return true, fmt.Errorf("persist stoplist: %w", err)
	}
	e.log.Info("stoplist changed: generation %s, %d cached results dropped", gen, n)
	return true, nil
}

// CacheStats reports result cache hits and misses.
func (e *Engine) CacheStats() (hits, misses int64) {
	s := e.cache.Stats()
	return s.Hits, s.Misses
}
