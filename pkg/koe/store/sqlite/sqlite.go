package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/koe/pkg/koe/internalerr"
	"github.com/cognicore/koe/pkg/koe/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	generation TEXT NOT NULL,
	value BLOB NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cache_generation ON cache_entries(generation);

CREATE TABLE IF NOT EXISTS stoplist (
	token TEXT PRIMARY KEY
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// GetEntry returns a cached entry by key.
func (s *sqliteStore) GetEntry(ctx context.Context, key string) (store.Entry, bool, error) {
	var (
		e       store.Entry
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT key, generation, value, created_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&e.Key, &e.Generation, &e.Value, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Entry{}, false, nil
	}
	if err != nil {
		return store.Entry{}, false, err
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		e.CreatedAt = t
	}
	return e, true, nil
}

// PutEntry inserts or replaces an entry.
func (s *sqliteStore) PutEntry(ctx context.Context, e store.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	value := e.Value
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO cache_entries (key, generation, value, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET generation = excluded.generation, value = excluded.value, created_at = excluded.created_at`,
		e.Key, e.Generation, value, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// PurgeGenerations drops entries from every generation except keep.
func (s *sqliteStore) PurgeGenerations(ctx context.Context, keep string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE generation <> ?`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountEntries reports the number of cached entries.
func (s *sqliteStore) CountEntries(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&n)
	return n, err
}

// UpsertStoplist replaces the stopword set in a single transaction.
func (s *sqliteStore) UpsertStoplist(ctx context.Context, tokens []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stoplist`); err != nil {
		return err
	}

	if len(tokens) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stoplist (token) VALUES (?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, tok := range tokens {
			if tok == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, tok); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Stoplist returns the stored stopwords, sorted.
func (s *sqliteStore) Stoplist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM stoplist ORDER BY token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tok string
		if err := rows.Scan(&tok); err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, rows.Err()
}
