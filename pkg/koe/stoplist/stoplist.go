package stoplist

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// DefaultBaseline is the fixed list of generic Japanese function words and
// light verbs excluded from every statistic.
var DefaultBaseline = []string{
	"の", "に", "は", "を", "た", "です", "ます", "が", "で", "も", "て", "と", "し", "れ", "さ",
	"ある", "いる", "する", "ない", "こと", "もの", "これ", "それ", "あれ", "よう", "ため",
	"人", "中", "等", "思う", "いう", "なる", "日", "時",
}

// Set is the union of a fixed baseline list and a user-editable dynamic
// list. A Set is not safe for concurrent edits; analysis runs work on a
// Clone.
type Set struct {
	baseline map[string]struct{}
	dynamic  map[string]struct{}
	merged   map[string]struct{}
}

// New creates a set from a baseline and a dynamic list.
func New(baseline, dynamic []string) *Set {
	s := &Set{
		baseline: toSet(baseline),
		dynamic:  toSet(dynamic),
	}
	s.rebuild()
	return s
}

// Default creates a set with DefaultBaseline and no dynamic words.
func Default() *Set {
	return New(DefaultBaseline, nil)
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func (s *Set) rebuild() {
	s.merged = make(map[string]struct{}, len(s.baseline)+len(s.dynamic))
	for w := range s.baseline {
		s.merged[w] = struct{}{}
	}
	for w := range s.dynamic {
		s.merged[w] = struct{}{}
	}
}

// IsStop checks if a word is excluded. A nil set excludes nothing.
func (s *Set) IsStop(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.merged[word]
	return ok
}

// AddDynamic adds words to the dynamic list and reports whether the set changed.
func (s *Set) AddDynamic(words ...string) bool {
	changed := false
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := s.dynamic[w]; ok {
			continue
		}
		s.dynamic[w] = struct{}{}
		changed = true
	}
	if changed {
		s.rebuild()
	}
	return changed
}

// RemoveDynamic removes words from the dynamic list. Baseline words cannot
// be removed.
func (s *Set) RemoveDynamic(words ...string) bool {
	changed := false
	for _, w := range words {
		w = strings.TrimSpace(w)
		if _, ok := s.dynamic[w]; ok {
			delete(s.dynamic, w)
			changed = true
		}
	}
	if changed {
		s.rebuild()
	}
	return changed
}

// SetDynamic replaces the dynamic list.
func (s *Set) SetDynamic(words []string) {
	s.dynamic = toSet(words)
	s.rebuild()
}

// Dynamic returns the dynamic words in sorted order.
func (s *Set) Dynamic() []string {
	return sortedKeys(s.dynamic)
}

// All returns every excluded word in sorted order.
func (s *Set) All() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.merged)
}

// Len returns the size of the merged set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.merged)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	if s == nil {
		return New(nil, nil)
	}
	return New(sortedKeys(s.baseline), sortedKeys(s.dynamic))
}

// Fingerprint identifies the merged contents. Two sets with the same words
// share a fingerprint regardless of which list a word came from, so it can
// be used as the cache generation for every stopword-dependent result.
func (s *Set) Fingerprint() string {
	h := sha256.New()
	for _, w := range s.All() {
		h.Write([]byte(w))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for w := range m {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
