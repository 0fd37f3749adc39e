package ingest

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cognicore/koe/pkg/koe/internalerr"
)

func TestAttrValue(t *testing.T) {
	osaka := "大阪"
	tests := []struct {
		in     any
		want   string
		wantOK bool
	}{
		{nil, "", false},
		{"", "", false},
		{"  ", "", false},
		{" 東京 ", "東京", true},
		{20.0, "20", true},
		{2.5, "2.5", true},
		{math.NaN(), "", false},
		{float32(3), "3", true},
		{7, "7", true},
		{int64(-1), "-1", true},
		{true, "true", true},
		{&osaka, "大阪", true},
		{(*string)(nil), "", false},
	}
	for _, tt := range tests {
		got, ok := AttrValue(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("AttrValue(%#v) = %q,%v; want %q,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestUniqueTokens(t *testing.T) {
	d := Document{Tokens: []string{"b", "a", "b", "c", "a"}}
	if got := d.UniqueTokens(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("UniqueTokens = %v", got)
	}
}

func TestValidateColumns(t *testing.T) {
	rows := []Row{
		{"comment": "x", "age": 20.0},
		{"comment": "y", "region": "関東"},
	}

	if err := ValidateColumns(rows, "comment", []string{"age", "region"}); err != nil {
		t.Errorf("valid columns rejected: %v", err)
	}

	tests := []struct {
		name string
		rows []Row
		text string
		attr []string
	}{
		{"missing text column name", rows, " ", nil},
		{"no rows", nil, "comment", nil},
		{"unknown text column", rows, "body", nil},
		{"unknown attribute", rows, "comment", []string{"gender"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumns(tt.rows, tt.text, tt.attr)
			if !errors.Is(err, internalerr.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
