package ingest

import (
	"errors"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/koe/pkg/koe/stoplist"
)

// DefaultMemoEntries bounds the token memo.
const DefaultMemoEntries = 8192

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	MemoEntries int  // 0 means DefaultMemoEntries
	SkipClean   bool // feed text to the analyzer without markup/URL stripping
	Compounds   *Compounds
}

// Pipeline orchestrates extraction for a dataset:
// row → text cleaning → morphology → compounds → filtering → Document.
// Token sequences are memoized per (stopword fingerprint, text) because the
// same responses are re-tokenized whenever a report is recomputed.
type Pipeline struct {
	morph     Morphology
	clean     bool
	compounds *Compounds
	memo      *lru.Cache[string, []string]
}

// NewPipeline creates a pipeline over a shared analyzer.
func NewPipeline(morph Morphology, opts PipelineOptions) (*Pipeline, error) {
	if morph == nil {
		return nil, errors.New("ingest: nil morphology")
	}
	size := opts.MemoEntries
	if size <= 0 {
		size = DefaultMemoEntries
	}
	memo, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &Pipeline{morph: morph, clean: !opts.SkipClean, compounds: opts.Compounds, memo: memo}, nil
}

// Tokens extracts the retained tokens of a single cell value.
func (p *Pipeline) Tokens(text any, stops *stoplist.Set) []string {
	return p.tokens(text, p.extractor(stops), stops.Fingerprint())
}

func (p *Pipeline) extractor(stops *stoplist.Set) *Extractor {
	return &Extractor{morph: p.morph, stops: stops, compounds: p.compounds}
}

// Fingerprint identifies the tokenization settings that change output for
// the same text and stopwords: markup cleaning and the compound dictionary.
func (p *Pipeline) Fingerprint() string {
	mode := "clean"
	if !p.clean {
		mode = "raw"
	}
	return mode + ":" + p.compounds.Fingerprint()
}

func (p *Pipeline) tokens(text any, ex *Extractor, fingerprint string) []string {
	s, ok := asText(text)
	if !ok {
		return nil
	}
	key := fingerprint + "\x00" + s
	if cached, ok := p.memo.Get(key); ok {
		return slices.Clone(cached)
	}
	if p.clean {
		s = Clean(s)
	}
	tokens := ex.Extract(s)
	p.memo.Add(key, tokens)
	return slices.Clone(tokens)
}

// Process builds one Document per row. Rows whose text cell is null or not
// a string produce documents without tokens; they still count as documents.
func (p *Pipeline) Process(rows []Row, textColumn string, attrColumns []string, stops *stoplist.Set) []Document {
	ex := p.extractor(stops)
	fp := stops.Fingerprint()

	docs := make([]Document, len(rows))
	for i, row := range rows {
		raw := row[textColumn]
		text, hasText := asText(raw)
		doc := Document{
			Index:   i,
			Text:    text,
			HasText: hasText,
			Tokens:  p.tokens(raw, ex, fp),
		}
		if len(attrColumns) > 0 {
			doc.Attrs = make(map[string]string, len(attrColumns))
			for _, col := range attrColumns {
				if v, ok := AttrValue(row[col]); ok {
					doc.Attrs[col] = v
				}
			}
		}
		docs[i] = doc
	}
	return docs
}

// MemoLen reports the number of memoized texts.
func (p *Pipeline) MemoLen() int {
	return p.memo.Len()
}

// Reset drops every memoized token sequence.
func (p *Pipeline) Reset() {
	p.memo.Purge()
}
