// Package cache memoizes analysis results by content address. Keys hash the
// dataset identity, the computation name and its configuration; values carry
// the generation (stoplist fingerprint) they were computed under, and
// Invalidate drops every other generation at once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/snappy"

	"github.com/cognicore/koe/pkg/koe/store"
)

// Key derives a cache key from its parts. Parts are length-prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func Key(datasetID, fn string, cfg ...string) string {
	h := sha256.New()
	var lenBuf [8]byte
	write := func(s string) {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}
	write(datasetID)
	write(fn)
	for _, c := range cfg {
		write(c)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache stores JSON-encoded, snappy-compressed values in a store.Store.
type Cache struct {
	st     store.Store
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness since creation.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// New wraps a store.
func New(st store.Store) *Cache {
	return &Cache{st: st}
}

// Do loads key into out when an entry of the given generation exists.
// Otherwise it runs compute, stores the result and decodes it into out.
// Entries from other generations are treated as misses.
func (c *Cache) Do(ctx context.Context, key, generation string, out any, compute func() (any, error)) error {
	if c == nil || c.st == nil {
		v, err := compute()
		if err != nil {
			return err
		}
		return assign(v, out)
	}

	e, ok, err := c.st.GetEntry(ctx, key)
	if err != nil {
		return fmt.Errorf("cache get: %w", err)
	}
	if ok && e.Generation == generation {
		if err := decode(e.Value, out); err == nil {
			c.hits.Add(1)
			return nil
		}
	}
	c.misses.Add(1)

	v, err := compute()
	if err != nil {
		return err
	}
	blob, err := encode(v)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.st.PutEntry(ctx, store.Entry{
		Key:        key,
		Generation: generation,
		Value:      blob,
		CreatedAt:  time.Now(),
	}); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return decode(blob, out)
}

// Invalidate removes every entry not computed under generation.
func (c *Cache) Invalidate(ctx context.Context, generation string) (int64, error) {
	if c == nil || c.st == nil {
		return 0, nil
	}
	return c.st.PurgeGenerations(ctx, generation)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func decode(blob []byte, out any) error {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// assign copies v into out through the codec so cached and uncached calls
// return identical shapes.
func assign(v any, out any) error {
	blob, err := encode(v)
	if err != nil {
		return err
	}
	return decode(blob, out)
}
