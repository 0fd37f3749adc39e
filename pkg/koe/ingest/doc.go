package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cognicore/koe/pkg/koe/internalerr"
)

// Row is one input record: column name to scalar value. Nil means null.
type Row map[string]any

// Document is one analyzable row after extraction. It is not modified after
// the pipeline returns it.
type Document struct {
	Index   int
	Text    string
	HasText bool
	Attrs   map[string]string // non-null attribute values only
	Tokens  []string
}

// Attr returns the value of an attribute column and whether it was non-null.
func (d Document) Attr(name string) (string, bool) {
	v, ok := d.Attrs[name]
	return v, ok
}

// UniqueTokens returns the distinct tokens of the document in first-seen order.
func (d Document) UniqueTokens() []string {
	seen := make(map[string]struct{}, len(d.Tokens))
	out := make([]string, 0, len(d.Tokens))
	for _, tok := range d.Tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// AttrValue normalizes a scalar cell for equality comparison. Null, NaN and
// blank strings are reported as absent.
func AttrValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case *string:
		if t == nil {
			return "", false
		}
		return AttrValue(*t)
	case float64:
		if math.IsNaN(t) {
			return "", false
		}
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return AttrValue(float64(t))
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// ValidateColumns checks that the text column is named and that every
// requested column appears in at least one row.
func ValidateColumns(rows []Row, textColumn string, attrColumns []string) error {
	if strings.TrimSpace(textColumn) == "" {
		return fmt.Errorf("%w: text column is required", internalerr.ErrInvalidInput)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: no rows", internalerr.ErrInvalidInput)
	}
	want := append([]string{textColumn}, attrColumns...)
	for _, col := range want {
		found := false
		for _, row := range rows {
			if _, ok := row[col]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: column %q not found", internalerr.ErrInvalidInput, col)
		}
	}
	return nil
}
