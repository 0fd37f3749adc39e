package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CompoundEntry maps morpheme sequences and spellings onto one canonical word.
// Each variant is a space-separated sequence of base forms as the analyzer
// emits them, e.g. "顧客 満足 度" for 顧客満足度.
type CompoundEntry struct {
	Canonical string
	Variants  []string
}

// Compounds rejoins analyzer-split compound nouns and folds synonyms.
type Compounds struct {
	dict   map[string]string // normalized phrase → canonical
	maxLen int
}

// NewCompounds builds a dictionary. The canonical form also matches itself.
func NewCompounds(entries []CompoundEntry) *Compounds {
	c := &Compounds{dict: make(map[string]string), maxLen: 1}
	for _, e := range entries {
		if strings.TrimSpace(e.Canonical) == "" {
			continue
		}
		for _, v := range append([]string{e.Canonical}, e.Variants...) {
			fields := strings.Fields(v)
			if len(fields) == 0 {
				continue
			}
			c.dict[phraseKey(fields)] = e.Canonical
			if len(fields) > c.maxLen {
				c.maxLen = len(fields)
			}
		}
	}
	return c
}

// Len reports the number of phrases (canonicals and variants) known.
func (c *Compounds) Len() int {
	if c == nil {
		return 0
	}
	return len(c.dict)
}

// Fingerprint identifies the dictionary contents; empty for a nil or
// empty dictionary.
func (c *Compounds) Fingerprint() string {
	if c.Len() == 0 {
		return ""
	}
	keys := make([]string, 0, len(c.dict))
	for k := range c.dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(c.dict[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

// Merge replaces runs of adjacent morphemes whose base forms spell a
// dictionary phrase with one noun whose base is the canonical word, using
// greedy longest match. It runs before any filtering, so parts that would
// be dropped alone (度, 性) still match, and a particle between two parts
// blocks the match.
func (c *Compounds) Merge(ms []Morpheme) []Morpheme {
	if c.Len() == 0 {
		return ms
	}
	bases := make([]string, len(ms))
	for i, m := range ms {
		bases[i] = m.Base
		if bases[i] == "" {
			bases[i] = m.Surface
		}
	}

	out := make([]Morpheme, 0, len(ms))
	for i := 0; i < len(ms); {
		n := min(c.maxLen, len(ms)-i)
		matched := false
		for ; n >= 1; n-- {
			canonical, ok := c.dict[phraseKey(bases[i:i+n])]
			if !ok {
				continue
			}
			var surface strings.Builder
			for _, m := range ms[i : i+n] {
				surface.WriteString(m.Surface)
			}
			out = append(out, Morpheme{Surface: surface.String(), Base: canonical, Class: ClassNoun})
			i += n
			matched = true
			break
		}
		if !matched {
			out = append(out, ms[i])
			i++
		}
	}
	return out
}

// phraseKey folds width variants (ｽﾏﾎ, ＡＩ) so dictionary spellings match
// analyzer output.
func phraseKey(tokens []string) string {
	return strings.ToLower(norm.NFKC.String(strings.Join(tokens, " ")))
}
