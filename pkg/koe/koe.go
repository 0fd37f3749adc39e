// Package koe computes classical text statistics over free-text survey
// responses: word frequencies, a co-occurrence network and the words that
// characterize each category of an attribute.
package koe

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/koe/internal/logging"
	"github.com/cognicore/koe/pkg/koe/analytics"
	"github.com/cognicore/koe/pkg/koe/cache"
	"github.com/cognicore/koe/pkg/koe/chisq"
	"github.com/cognicore/koe/pkg/koe/cooccur"
	"github.com/cognicore/koe/pkg/koe/freq"
	"github.com/cognicore/koe/pkg/koe/ingest"
	"github.com/cognicore/koe/pkg/koe/internalerr"
	"github.com/cognicore/koe/pkg/koe/stoplist"
	"github.com/cognicore/koe/pkg/koe/store"
	"github.com/cognicore/koe/pkg/koe/store/memstore"
)

// Engine is the analysis facade. It owns the shared analyzer pipeline, the
// stopword set and the result cache.
type Engine struct {
	mu       sync.RWMutex
	stops    *stoplist.Set
	pipeline *ingest.Pipeline
	store    store.Store
	cache    *cache.Cache
	log      *logging.Logger

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Config wires an Engine.
type Config struct {
	Pipeline *ingest.Pipeline
	Stops    *stoplist.Set  // nil means stoplist.Default()
	Store    store.Store    // nil keeps cached results in memory
	Logger   *logging.Logger
}

// New creates an Engine. A missing pipeline means no analyzer is available,
// which is fatal.
func New(cfg Config) (*Engine, error) {
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("%w: no pipeline configured", internalerr.ErrAnalyzerUnavailable)
	}
	stops := cfg.Stops
	if stops == nil {
		stops = stoplist.Default()
	}
	st := cfg.Store
	if st == nil {
		st = memstore.New()
	}
	return &Engine{
		stops:    stops.Clone(),
		pipeline: cfg.Pipeline,
		store:    st,
		cache:    cache.New(st),
		log:      cfg.Logger,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Options selects the columns and tunes each analysis.
type Options struct {
	// DatasetID identifies the input for caching. Empty derives it from
	// the row contents.
	DatasetID        string   `json:"dataset_id,omitempty"`
	TextColumn       string   `json:"text_column"`
	AttributeColumns []string `json:"attribute_columns,omitempty"`

	TopN  int             `json:"top_n"`
	Graph cooccur.Options `json:"graph"`
	Chisq chisq.Options   `json:"chisq"`

	// Suggest tunes stopword suggestions; zero means DefaultThresholds.
	Suggest stoplist.Thresholds `json:"suggest"`
	// SuggestAttribute supplies categories for suggestion entropy. Empty
	// uses the first attribute column.
	SuggestAttribute string `json:"suggest_attribute,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = freq.DefaultTopN
	}
	if o.Suggest == (stoplist.Thresholds{}) {
		o.Suggest = stoplist.DefaultThresholds()
	}
	if o.SuggestAttribute == "" && len(o.AttributeColumns) > 0 {
		o.SuggestAttribute = o.AttributeColumns[0]
	}
	return o
}

// Note records a section that could not be computed for the input.
type Note struct {
	Section string `json:"section"`
	Reason  string `json:"reason"`
}

// Result is one immutable analysis run. ConfigHash identifies the input,
// options and stopword generation; identical hashes carry identical
// statistics.
type Result struct {
	ID         string    `json:"id"`
	ConfigHash string    `json:"config_hash"`
	Generation string    `json:"generation"`
	CreatedAt  time.Time `json:"created_at"`

	Documents  int `json:"documents"`
	WithText   int `json:"with_text"`
	Vocabulary int `json:"vocabulary"`

	WordCloud      map[string]int                       `json:"word_cloud"`
	Ranking        []freq.Ranked                        `json:"ranking"`
	FrequencyBy    map[string]map[string][]freq.Ranked  `json:"frequency_by,omitempty"`
	Graph          *cooccur.Graph                       `json:"graph,omitempty"`
	Characteristic map[string]*chisq.Report             `json:"characteristic,omitempty"`
	Suggestions    []stoplist.Candidate                 `json:"suggestions,omitempty"`
	Notes          []Note                               `json:"notes,omitempty"`

	// Docs are the extracted documents, kept for summarization.
	Docs []ingest.Document `json:"-"`
}

type frequencySection struct {
	Ranking    []freq.Ranked  `json:"ranking"`
	WordCloud  map[string]int `json:"word_cloud"`
	Vocabulary int            `json:"vocabulary"`
}

// Analyze runs every statistic over rows. Sections that the input cannot
// support are reported in Result.Notes; only an empty input or invalid
// columns fail the run.
func (e *Engine) Analyze(ctx context.Context, rows []ingest.Row, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if len(rows) == 0 {
		return nil, internalerr.Insufficient("analyze", "documents")
	}
	if err := ingest.ValidateColumns(rows, opts.TextColumn, opts.AttributeColumns); err != nil {
		return nil, err
	}

	stops := e.Stopwords()
	gen := e.generation(stops)
	datasetID := opts.DatasetID
	if datasetID == "" {
		datasetID = DatasetID(rows, opts.TextColumn, opts.AttributeColumns)
	}
	optsKey, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}

	docs := e.pipeline.Process(rows, opts.TextColumn, opts.AttributeColumns, stops)
	tokens := make([][]string, len(docs))
	withText := 0
	for i, d := range docs {
		tokens[i] = d.Tokens
		if d.HasText {
			withText++
		}
	}

	res := &Result{
		ID:         e.newID(),
		ConfigHash: cache.Key(datasetID, "analyze", gen, string(optsKey)),
		Generation: gen,
		CreatedAt:  time.Now().UTC(),
		Documents:  len(docs),
		WithText:   withText,
		Docs:       docs,
	}
	key := func(fn string, parts ...string) string {
		return cache.Key(datasetID, fn, append([]string{gen}, parts...)...)
	}

	var fs frequencySection
	if err := e.cache.Do(ctx, key("frequency", fmt.Sprint(opts.TopN)), gen, &fs, func() (any, error) {
		t := freq.CountDocuments(tokens, stops)
		return frequencySection{Ranking: t.Top(opts.TopN), WordCloud: t.Map(), Vocabulary: t.Len()}, nil
	}); err != nil {
		return nil, err
	}
	res.Ranking, res.WordCloud, res.Vocabulary = fs.Ranking, fs.WordCloud, fs.Vocabulary

	if len(opts.AttributeColumns) > 0 {
		if err := e.cache.Do(ctx, key("frequency_by", fmt.Sprint(opts.TopN), fmt.Sprint(opts.AttributeColumns)), gen, &res.FrequencyBy, func() (any, error) {
			return frequencyBy(docs, opts.AttributeColumns, stops, opts.TopN), nil
		}); err != nil {
			return nil, err
		}
	}

	graphOpts, _ := json.Marshal(opts.Graph)
	var g cooccur.Graph
	err = e.cache.Do(ctx, key("cooccur", string(graphOpts)), gen, &g, func() (any, error) {
		return cooccur.Build(tokens, stops, opts.Graph)
	})
	switch {
	case err == nil:
		res.Graph = &g
	case errors.Is(err, internalerr.ErrInsufficientData):
		res.Notes = append(res.Notes, Note{Section: "cooccur", Reason: err.Error()})
	default:
		return nil, err
	}

	chiOpts, _ := json.Marshal(opts.Chisq)
	for _, attr := range opts.AttributeColumns {
		var report chisq.Report
		err := e.cache.Do(ctx, key("chisq", attr, string(chiOpts)), gen, &report, func() (any, error) {
			return chisq.Select(docs, attr, stops, opts.Chisq)
		})
		switch {
		case err == nil:
			if res.Characteristic == nil {
				res.Characteristic = make(map[string]*chisq.Report)
			}
			res.Characteristic[attr] = &report
			e.log.Debug("chisq %s: %d tables tested, %d skipped", attr, report.Tested, report.Skipped)
		case errors.Is(err, internalerr.ErrInsufficientData):
			res.Notes = append(res.Notes, Note{Section: "chisq:" + attr, Reason: err.Error()})
		default:
			return nil, err
		}
	}

	a := analytics.NewAnalyzer()
	a.ProcessDocuments(docs, opts.SuggestAttribute)
	res.Suggestions = stops.SuggestCandidates(a.Snapshot().StopwordStats(), opts.Suggest)

	e.log.Debug("analyze %s: %d documents, %d with text, %d words, generation %s",
		res.ID, res.Documents, res.WithText, res.Vocabulary, gen)
	return res, nil
}

func frequencyBy(docs []ingest.Document, attrs []string, stops *stoplist.Set, topN int) map[string]map[string][]freq.Ranked {
	out := make(map[string]map[string][]freq.Ranked, len(attrs))
	for _, attr := range attrs {
		groups := make(map[string][][]string)
		for _, d := range docs {
			if v, ok := d.Attr(attr); ok {
				groups[v] = append(groups[v], d.Tokens)
			}
		}
		byValue := make(map[string][]freq.Ranked, len(groups))
		for v, toks := range groups {
			byValue[v] = freq.CountDocuments(toks, stops).Top(topN)
		}
		out[attr] = byValue
	}
	return out
}

// DatasetID hashes the columns an analysis reads, so edits to other columns
// keep cached results valid. Cells are hashed with their dynamic type so
// "1" and 1 differ.
func DatasetID(rows []ingest.Row, textColumn string, attrColumns []string) string {
	cols := append([]string{textColumn}, attrColumns...)
	sort.Strings(cols)
	h := sha256.New()
	for _, row := range rows {
		for _, c := range cols {
			v := row[c]
			if p, ok := v.(*string); ok && p != nil {
				v = *p
			}
			cell := fmt.Sprintf("%T:%v", v, v)
			fmt.Fprintf(h, "%d:%s%d:%s", len(c), c, len(cell), cell)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// generation tags cached results with everything that changes tokens for
// the same text: the stopword set and the pipeline's own settings.
func (e *Engine) generation(stops *stoplist.Set) string {
	sum := sha256.Sum256([]byte(stops.Fingerprint() + "\x00" + e.pipeline.Fingerprint()))
	return hex.EncodeToString(sum[:12])
}

func (e *Engine) newID() string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}
