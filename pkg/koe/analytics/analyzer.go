package analytics

import (
	"math"
	"sort"

	"github.com/cognicore/koe/pkg/koe/ingest"
	"github.com/cognicore/koe/pkg/koe/stoplist"
)

// Analyzer aggregates document-level word and category stats.
type Analyzer struct {
	totalDocs int64
	tokenDF   map[string]int64
	tokenCats map[string]map[string]int64
	catDocs   map[string]int64
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		tokenDF:   make(map[string]int64),
		tokenCats: make(map[string]map[string]int64),
		catDocs:   make(map[string]int64),
	}
}

// Process consumes one document's tokens and its category. An empty
// category means the document is uncategorized.
func (a *Analyzer) Process(tokens []string, category string) {
	a.totalDocs++
	if category != "" {
		a.catDocs[category]++
	}

	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		a.tokenDF[tok]++
		if category == "" {
			continue
		}
		if a.tokenCats[tok] == nil {
			a.tokenCats[tok] = make(map[string]int64)
		}
		a.tokenCats[tok][category]++
	}
}

// ProcessDocuments feeds every document, using attribute as the category
// column. An empty attribute processes documents without categories.
func (a *Analyzer) ProcessDocuments(docs []ingest.Document, attribute string) {
	for _, d := range docs {
		var cat string
		if attribute != "" {
			cat, _ = d.Attr(attribute)
		}
		a.Process(d.Tokens, cat)
	}
}

// Stats exposes the aggregated counts.
type Stats struct {
	TotalDocs int64
	TokenDF   map[string]int64
	TokenCats map[string]map[string]int64
	CatDocs   map[string]int64
}

// Snapshot returns a copy of the accumulated statistics.
func (a *Analyzer) Snapshot() Stats {
	copyCats := make(map[string]map[string]int64, len(a.tokenCats))
	for tok, cats := range a.tokenCats {
		copyCats[tok] = make(map[string]int64, len(cats))
		for cat, count := range cats {
			copyCats[tok][cat] = count
		}
	}
	copyDF := make(map[string]int64, len(a.tokenDF))
	for tok, count := range a.tokenDF {
		copyDF[tok] = count
	}
	copyCatDocs := make(map[string]int64, len(a.catDocs))
	for cat, count := range a.catDocs {
		copyCatDocs[cat] = count
	}
	return Stats{
		TotalDocs: a.totalDocs,
		TokenDF:   copyDF,
		TokenCats: copyCats,
		CatDocs:   copyCatDocs,
	}
}

// StopwordStats converts corpus stats into the form stoplist suggestions
// expect, sorted by word. Category entropy is measured on the share of each
// category's documents containing the word, so unequal category sizes do not
// look like skew.
func (s Stats) StopwordStats() []stoplist.Stats {
	var out []stoplist.Stats
	if s.TotalDocs == 0 {
		return out
	}
	for tok, df := range s.TokenDF {
		out = append(out, stoplist.Stats{
			Word:       tok,
			DF:         df,
			DFPercent:  100 * (float64(df) / float64(s.TotalDocs)),
			CatEntropy: s.entropy(tok),
			Categories: len(s.CatDocs),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

// entropy is the Shannon entropy of the word's per-category document rate,
// normalized by the maximum for the number of categories.
func (s Stats) entropy(tok string) float64 {
	if len(s.CatDocs) < 2 {
		return 0
	}
	rates := make([]float64, 0, len(s.CatDocs))
	var total float64
	for cat, n := range s.CatDocs {
		if n == 0 {
			continue
		}
		r := float64(s.TokenCats[tok][cat]) / float64(n)
		rates = append(rates, r)
		total += r
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, r := range rates {
		p := r / total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h / math.Log2(float64(len(rates)))
}
