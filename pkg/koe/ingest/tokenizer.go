package ingest

import (
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/koe/pkg/koe/stoplist"
)

// Extractor turns raw text into base-form content words.
type Extractor struct {
	morph     Morphology
	stops     *stoplist.Set
	compounds *Compounds
}

// NewExtractor creates an extractor over the given analyzer and stopwords.
// A nil stopword set excludes nothing.
func NewExtractor(morph Morphology, stops *stoplist.Set) *Extractor {
	return &Extractor{morph: morph, stops: stops}
}

// Extract returns the retained base forms of text in input order.
// Duplicates are kept. Nil or non-string input yields no tokens.
func (e *Extractor) Extract(text any) []string {
	s, ok := asText(text)
	if !ok || s == "" {
		return nil
	}
	var tokens []string
	for _, m := range e.compounds.Merge(e.morph.Analyze(s)) {
		if word, ok := e.keep(m); ok {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// keep applies part-of-speech, numeric, stopword and length filtering.
func (e *Extractor) keep(m Morpheme) (string, bool) {
	if !m.Class.Content() {
		return "", false
	}
	base := m.Base
	if base == "" {
		base = m.Surface
	}
	if isNumericOnly(m.Surface) || isNumericOnly(base) {
		return "", false
	}
	if e.stops.IsStop(base) {
		return "", false
	}
	// Single characters are mostly particles and counters in Japanese.
	if utf8.RuneCountInString(base) <= 1 {
		return "", false
	}
	return base, true
}

func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	default:
		return "", false
	}
}

// isNumericOnly returns true if the token contains only digits (any script)
// and numeric punctuation.
func isNumericOnly(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',' || r == '-' || r == '．' || r == '，':
		default:
			return false
		}
	}
	return digits > 0
}
