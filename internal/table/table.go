// Package table loads survey rows from JSONL and CSV exports.
package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/cognicore/koe/internal/logging"
	"github.com/cognicore/koe/pkg/koe/ingest"
	"github.com/cognicore/koe/pkg/koe/internalerr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls loading.
type Options struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	Logger  *logging.Logger
}

// Load reads rows from path, choosing the format by extension: .jsonl and
// .ndjson are JSON lines, everything else is delimited text.
func Load(path string, opt Options) ([]ingest.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadJSONL(path, opt)
	default:
		return LoadCSV(path, opt)
	}
}

// LoadJSONL loads one object per line. Malformed lines are skipped with a
// warning.
func LoadJSONL(path string, opt Options) ([]ingest.Row, error) {
	data, err := readUTF8(path)
	if err != nil {
		return nil, err
	}

	var rows []ingest.Row
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var row ingest.Row
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			opt.Logger.Warn("skipping malformed JSON at line %d in %s: %v", line, path, err)
			continue
		}
		rows = append(rows, row)
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no valid rows found in %s", internalerr.ErrInvalidInput, path)
	}
	return rows, nil
}

// LoadCSV loads delimited text. The first record names the columns and an
// empty cell is null. Short records leave trailing columns null.
func LoadCSV(path string, opt Options) ([]ingest.Row, error) {
	data, err := readUTF8(path)
	if err != nil {
		return nil, err
	}

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", internalerr.ErrInvalidInput, path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []ingest.Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := r.FieldPos(0)
			opt.Logger.Warn("skipping malformed record near line %d in %s: %v", line, path, err)
			continue
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			opt.Logger.Warn("line %d in %s has %d fields, header has %d; extra fields dropped", line, path, len(rec), len(header))
		}
		row := make(ingest.Row, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
				row[col] = nil
				continue
			}
			row[col] = rec[i]
		}
		rows = append(rows, row)
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows found in %s", internalerr.ErrInvalidInput, path)
	}
	return rows, nil
}

// readUTF8 reads a file and converts Shift_JIS exports (common from
// spreadsheet software in Japan) to UTF-8. A UTF-8 byte order mark is
// dropped.
func readUTF8(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is neither UTF-8 nor Shift_JIS: %v", internalerr.ErrInvalidInput, path, err)
	}
	return decoded, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Columns returns the union of column names in first-seen order. JSON object
// keys have no order, so names within one row are sorted.
func Columns(rows []ingest.Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			if _, ok := seen[k]; !ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
