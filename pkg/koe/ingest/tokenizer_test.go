package ingest

import (
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/cognicore/koe/pkg/koe/stoplist"
)

func TestExtractBasic(t *testing.T) {
	ex := NewExtractor(scripted, nil)

	got := ex.Extract("料金:料金:n が:が:o 高かっ:高い:a た:た:o 使っ:使う:v")
	want := []string{"料金", "高い", "使う"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtractKeepsDuplicates(t *testing.T) {
	ex := NewExtractor(scripted, nil)

	got := ex.Extract("満足 満足 対応")
	if len(got) != 3 {
		t.Errorf("duplicates should be kept, got %v", got)
	}
}

func TestExtractNonString(t *testing.T) {
	ex := NewExtractor(scripted, nil)

	var nilStr *string
	cases := []any{nil, 42, 3.5, true, nilStr, ""}
	for _, c := range cases {
		if got := ex.Extract(c); len(got) != 0 {
			t.Errorf("Extract(%#v) = %v, want empty", c, got)
		}
	}

	s := "サポート"
	if got := ex.Extract(&s); len(got) != 1 {
		t.Errorf("Extract(*string) = %v, want one token", got)
	}
}

func TestExtractFilters(t *testing.T) {
	stops := stoplist.New([]string{"こと"}, []string{"会社"})
	ex := NewExtractor(scripted, stops)

	tests := []struct {
		name  string
		input string
	}{
		{"particle", "が:が:o"},
		{"single character", "猫:猫:n"},
		{"numeric surface", "2024:2024:n"},
		{"fullwidth numeric", "１２３:１２３:n"},
		{"numeric base", "三つ:10:n"},
		{"baseline stopword", "こと:こと:n"},
		{"dynamic stopword", "会社:会社:n"},
		{"stopword by base form", "した:する:v"},
	}
	// "する" is not in this set, so add it to check base-form matching.
	stops.AddDynamic("する")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ex.Extract(tt.input); len(got) != 0 {
				t.Errorf("Extract(%q) = %v, want empty", tt.input, got)
			}
		})
	}
}

func TestExtractMixedNumeric(t *testing.T) {
	ex := NewExtractor(scripted, nil)

	got := ex.Extract("iPhone15:iPhone15:n ３月:３月:n")
	if len(got) != 2 {
		t.Errorf("mixed tokens should be kept, got %v", got)
	}
}

func TestExtractFallsBackToSurface(t *testing.T) {
	ex := NewExtractor(MorphologyFunc(func(string) []Morpheme {
		return []Morpheme{{Surface: "アプリ", Class: ClassNoun}}
	}), nil)

	got := ex.Extract("アプリ")
	if len(got) != 1 || got[0] != "アプリ" {
		t.Errorf("Extract = %v, want [アプリ]", got)
	}
}

func TestExtractDeterministic(t *testing.T) {
	ex := NewExtractor(scripted, stoplist.Default())
	input := "画面:画面:n 見:見る:v やすい:やすい:a 画面:画面:n"

	first := ex.Extract(input)
	second := ex.Extract(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("non-deterministic extraction: %v vs %v", first, second)
	}
}

func TestExtractProperties(t *testing.T) {
	stops := stoplist.Default()
	ex := NewExtractor(scripted, stops)

	input := "人:人:n 中:中:n 説明:説明:n 100:100:n 丁寧:丁寧:a 思っ:思う:v 分かる:分かる:v"
	for _, tok := range ex.Extract(input) {
		if stops.IsStop(tok) {
			t.Errorf("token %q is a stopword", tok)
		}
		if utf8.RuneCountInString(tok) <= 1 {
			t.Errorf("token %q is too short", tok)
		}
		if isNumericOnly(tok) {
			t.Errorf("token %q is numeric", tok)
		}
	}
}

func TestIsNumericOnly(t *testing.T) {
	tests := map[string]bool{
		"123":    true,
		"1,000":  true,
		"3.14":   true,
		"１２３":    true,
		"-":      false,
		"":       false,
		"v2":     false,
		"二十":     false,
		"2024年":  false,
	}
	for in, want := range tests {
		if got := isNumericOnly(in); got != want {
			t.Errorf("isNumericOnly(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestClassString(t *testing.T) {
	if ClassNoun.String() != "noun" || ClassOther.String() != "other" {
		t.Error("unexpected class names")
	}
	if ClassOther.Content() {
		t.Error("other should not be a content class")
	}
}
