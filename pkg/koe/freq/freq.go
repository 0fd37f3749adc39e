package freq

import (
	"sort"

	"github.com/cognicore/koe/pkg/koe/stoplist"
)

// DefaultTopN is the ranking length used when callers pass no limit.
const DefaultTopN = 50

// Ranked is one row of a frequency ranking.
type Ranked struct {
	Rank      int    `json:"rank"`
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// Table maps words to occurrence counts. It remembers first-appearance
// order so rankings are deterministic for a given input order.
type Table struct {
	order  []string
	counts map[string]int
	total  int
}

// Count aggregates a flat word sequence. Stopwords are filtered again here
// because the dynamic list can change after tokenization.
func Count(words []string, stops *stoplist.Set) *Table {
	t := &Table{counts: make(map[string]int)}
	for _, w := range words {
		if w == "" || stops.IsStop(w) {
			continue
		}
		if _, ok := t.counts[w]; !ok {
			t.order = append(t.order, w)
		}
		t.counts[w]++
		t.total++
	}
	return t
}

// CountDocuments flattens per-document token sequences and counts them.
func CountDocuments(docs [][]string, stops *stoplist.Set) *Table {
	n := 0
	for _, d := range docs {
		n += len(d)
	}
	flat := make([]string, 0, n)
	for _, d := range docs {
		flat = append(flat, d...)
	}
	return Count(flat, stops)
}

// Top returns the n most frequent words, rank 1 first. Ties keep first
// appearance order. n <= 0 returns the full ranking.
func (t *Table) Top(n int) []Ranked {
	words := make([]string, len(t.order))
	copy(words, t.order)
	sort.SliceStable(words, func(i, j int) bool {
		return t.counts[words[i]] > t.counts[words[j]]
	})
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	out := make([]Ranked, len(words))
	for i, w := range words {
		out[i] = Ranked{Rank: i + 1, Word: w, Frequency: t.counts[w]}
	}
	return out
}

// Map returns a copy of the word counts, the input shape for word clouds.
func (t *Table) Map() map[string]int {
	out := make(map[string]int, len(t.counts))
	for w, c := range t.counts {
		out[w] = c
	}
	return out
}

// Get returns the count of a word.
func (t *Table) Get(word string) int {
	return t.counts[word]
}

// Total returns the number of retained occurrences.
func (t *Table) Total() int {
	return t.total
}

// Len returns the number of distinct words.
func (t *Table) Len() int {
	return len(t.order)
}
