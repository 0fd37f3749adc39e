package chisq

import (
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"

	"github.com/cognicore/koe/pkg/koe/ingest"
	"github.com/cognicore/koe/pkg/koe/internalerr"
	"github.com/cognicore/koe/pkg/koe/stoplist"
)

// Defaults for characteristic-word selection.
const (
	DefaultSignificance = 0.05
	DefaultLimit        = 20
)

// Options controls Select.
type Options struct {
	Significance float64 // retain words with p below this; 0 means DefaultSignificance
	Limit        int     // words kept per category; 0 means DefaultLimit, <0 keeps all
	NoCorrection bool    // disable Yates' continuity correction
	Workers      int     // categories tested concurrently; <=1 runs sequentially
}

func (o Options) withDefaults() Options {
	if o.Significance <= 0 {
		o.Significance = DefaultSignificance
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Result is one characteristic word of a category.
type Result struct {
	Word      string  `json:"word"`
	PValue    float64 `json:"p_value"`
	Statistic float64 `json:"statistic"`
	Observed  int64   `json:"observed"`
	Expected  float64 `json:"expected"`
}

// CategoryResult lists the characteristic words of one attribute value,
// most significant first.
type CategoryResult struct {
	Category string   `json:"category"`
	Docs     int      `json:"docs"`
	Words    []Result `json:"words"`
}

// Report is the characteristic-word analysis of one attribute.
type Report struct {
	Attribute  string           `json:"attribute"`
	Categories []CategoryResult `json:"categories"`
	Tested     int              `json:"tested"`  // contingency tables evaluated
	Skipped    int              `json:"skipped"` // degenerate tables
}

// Words returns the characteristic words of a category, or nil when the
// category is unknown.
func (r *Report) Words(category string) []Result {
	for _, c := range r.Categories {
		if c.Category == category {
			return c.Words
		}
	}
	return nil
}

// Map returns category to words, the shape visualization adapters consume.
func (r *Report) Map() map[string][]Result {
	out := make(map[string][]Result, len(r.Categories))
	for _, c := range r.Categories {
		out[c.Category] = c.Words
	}
	return out
}

// index holds document presence sets over the documents that carry a
// non-null value for the attribute. Positions are offsets into that subset.
type index struct {
	n          int
	categories []string
	catDocs    []*roaring.Bitmap
	vocab      []string
	wordDocs   []*roaring.Bitmap
}

func buildIndex(docs []ingest.Document, attribute string, stops *stoplist.Set) *index {
	catIdx := make(map[string]*roaring.Bitmap)
	wordIdx := make(map[string]*roaring.Bitmap)
	var pos uint32
	for _, d := range docs {
		v, ok := d.Attr(attribute)
		if !ok {
			continue
		}
		bm, ok := catIdx[v]
		if !ok {
			bm = roaring.New()
			catIdx[v] = bm
		}
		bm.Add(pos)
		for _, w := range d.Tokens {
			if w == "" || stops.IsStop(w) {
				continue
			}
			wb, ok := wordIdx[w]
			if !ok {
				wb = roaring.New()
				wordIdx[w] = wb
			}
			wb.Add(pos)
		}
		pos++
	}

	ix := &index{n: int(pos)}
	for c := range catIdx {
		ix.categories = append(ix.categories, c)
	}
	sort.Strings(ix.categories)
	for _, c := range ix.categories {
		ix.catDocs = append(ix.catDocs, catIdx[c])
	}
	for w := range wordIdx {
		ix.vocab = append(ix.vocab, w)
	}
	sort.Strings(ix.vocab)
	for _, w := range ix.vocab {
		ix.wordDocs = append(ix.wordDocs, wordIdx[w])
	}
	return ix
}

// Select finds, for every value of attribute, the words over-represented in
// documents with that value. Documents whose attribute is null take no part.
// Stopwords are excluded from the vocabulary. It fails with an
// insufficient-data error when fewer than two distinct values exist.
func Select(docs []ingest.Document, attribute string, stops *stoplist.Set, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	ix := buildIndex(docs, attribute, stops)
	if len(ix.categories) < 2 {
		return nil, internalerr.Insufficient("chisq", fmt.Sprintf("categories for %q (found %d)", attribute, len(ix.categories)))
	}

	report := &Report{
		Attribute:  attribute,
		Categories: make([]CategoryResult, len(ix.categories)),
	}
	tested := make([]int, len(ix.categories))
	skipped := make([]int, len(ix.categories))

	run := func(i int) {
		report.Categories[i], tested[i], skipped[i] = ix.category(i, opts)
	}
	if opts.Workers <= 1 {
		for i := range ix.categories {
			run(i)
		}
	} else {
		sem := make(chan struct{}, opts.Workers)
		var wg sync.WaitGroup
		for i := range ix.categories {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				run(i)
			}(i)
		}
		wg.Wait()
	}

	for i := range ix.categories {
		report.Tested += tested[i]
		report.Skipped += skipped[i]
	}
	return report, nil
}

// category tests every vocabulary word against category i. It reads the
// shared index only.
func (ix *index) category(i int, opts Options) (CategoryResult, int, int) {
	cat := ix.catDocs[i]
	inCat := int64(cat.GetCardinality())
	outCat := int64(ix.n) - inCat

	res := CategoryResult{Category: ix.categories[i], Docs: int(inCat), Words: []Result{}}
	var tested, skipped int
	for j, w := range ix.vocab {
		wd := ix.wordDocs[j]
		a := int64(wd.AndCardinality(cat))
		b := int64(wd.GetCardinality()) - a
		table := Contingency{A: a, B: b, C: inCat - a, D: outCat - b}

		tr, ok := table.Test(!opts.NoCorrection)
		if !ok {
			skipped++
			continue
		}
		tested++
		if tr.PValue >= opts.Significance || float64(a) <= tr.Expected {
			continue
		}
		res.Words = append(res.Words, Result{
			Word:      w,
			PValue:    tr.PValue,
			Statistic: tr.Statistic,
			Observed:  a,
			Expected:  tr.Expected,
		})
	}

	// vocab is sorted, so a stable sort leaves equal p-values in word order.
	sort.SliceStable(res.Words, func(x, y int) bool {
		return res.Words[x].PValue < res.Words[y].PValue
	})
	if opts.Limit > 0 && len(res.Words) > opts.Limit {
		res.Words = res.Words[:opts.Limit]
	}
	return res, tested, skipped
}
