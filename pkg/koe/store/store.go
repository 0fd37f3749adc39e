package store

import (
	"context"
	"time"
)

// Store persists cached analysis results and the user's dynamic stoplist.
type Store interface {
	Close() error

	// Cached results
	GetEntry(ctx context.Context, key string) (Entry, bool, error)
	PutEntry(ctx context.Context, e Entry) error
	// PurgeGenerations deletes every entry whose generation differs from
	// keep and reports how many were removed.
	PurgeGenerations(ctx context.Context, keep string) (int64, error)
	CountEntries(ctx context.Context) (int64, error)

	// Dynamic stoplist
	UpsertStoplist(ctx context.Context, tokens []string) error
	Stoplist(ctx context.Context) ([]string, error)
}

// Entry is one cached value. Value is opaque to the store.
type Entry struct {
	Key        string
	Generation string
	Value      []byte
	CreatedAt  time.Time
}
