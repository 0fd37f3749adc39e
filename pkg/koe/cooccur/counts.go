package cooccur

import "sort"

// Pair is an unordered word pair in canonical order (A < B).
type Pair struct {
	A, B string
}

// NewPair canonicalizes a pair so (a,b) and (b,a) are the same key.
func NewPair(a, b string) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// PairCount is a pair with its document co-occurrence weight.
type PairCount struct {
	Pair
	Weight int64
}

// Counter maintains document-level co-occurrence counts. A word counts once
// per document no matter how often it repeats.
type Counter struct {
	n     int64
	df    map[string]int64
	pairs map[Pair]int64
}

// NewCounter creates a new co-occurrence counter
func NewCounter() *Counter {
	return &Counter{
		df:    make(map[string]int64),
		pairs: make(map[Pair]int64),
	}
}

// AddDocument updates counts with one document's tokens. Duplicates and
// empty strings are ignored, so no pair ever joins a word with itself.
func (c *Counter) AddDocument(tokens []string) {
	c.n++

	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	sort.Strings(unique)

	for _, t := range unique {
		c.df[t]++
	}
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			c.pairs[Pair{A: unique[i], B: unique[j]}]++
		}
	}
}

// PairCount returns the co-occurrence count for a pair in either order.
func (c *Counter) PairCount(a, b string) int64 {
	return c.pairs[NewPair(a, b)]
}

// DocFreq returns the number of documents containing a word.
func (c *Counter) DocFreq(word string) int64 {
	return c.df[word]
}

// TotalDocs returns the total number of documents processed
func (c *Counter) TotalDocs() int64 {
	return c.n
}

// UniqueTokens returns the number of distinct words seen.
func (c *Counter) UniqueTokens() int {
	return len(c.df)
}

// UniquePairs returns the number of distinct pairs seen.
func (c *Counter) UniquePairs() int {
	return len(c.pairs)
}

// TopPairs returns the k heaviest pairs. Equal weights are ordered by the
// canonical pair (A, then B) so the selection is deterministic. k <= 0
// returns every pair.
func (c *Counter) TopPairs(k int) []PairCount {
	out := make([]PairCount, 0, len(c.pairs))
	for p, w := range c.pairs {
		out = append(out, PairCount{Pair: p, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
