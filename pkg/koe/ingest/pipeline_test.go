package ingest

import (
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/cognicore/koe/pkg/koe/stoplist"
)

func countingMorphology(calls *int64) Morphology {
	return MorphologyFunc(func(text string) []Morpheme {
		atomic.AddInt64(calls, 1)
		return scripted(text)
	})
}

func TestPipelineProcess(t *testing.T) {
	p, err := NewPipeline(scripted, PipelineOptions{})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	rows := []Row{
		{"comment": "対応:対応:n 丁寧:丁寧:a", "age": 20.0, "gender": "女性"},
		{"comment": nil, "age": 30.0, "gender": " "},
		{"comment": 12.0, "gender": "男性"},
	}
	docs := p.Process(rows, "comment", []string{"age", "gender"}, stoplist.New(nil, nil))

	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}
	if !reflect.DeepEqual(docs[0].Tokens, []string{"対応", "丁寧"}) {
		t.Errorf("doc0 tokens = %v", docs[0].Tokens)
	}
	if v, ok := docs[0].Attr("age"); !ok || v != "20" {
		t.Errorf("doc0 age = %q,%v; want 20,true", v, ok)
	}
	if docs[1].HasText || len(docs[1].Tokens) != 0 {
		t.Error("null text should produce an empty document")
	}
	if _, ok := docs[1].Attr("gender"); ok {
		t.Error("blank attribute should be treated as null")
	}
	if docs[2].HasText || len(docs[2].Tokens) != 0 {
		t.Error("non-string text should produce an empty document")
	}
	if _, ok := docs[2].Attr("age"); ok {
		t.Error("missing attribute should be treated as null")
	}
	for i, d := range docs {
		if d.Index != i {
			t.Errorf("doc %d has index %d", i, d.Index)
		}
	}
}

func TestPipelineMemo(t *testing.T) {
	var calls int64
	p, err := NewPipeline(countingMorphology(&calls), PipelineOptions{})
	if err != nil {
		t.Fatal(err)
	}
	stops := stoplist.New(nil, nil)

	first := p.Tokens("画面:画面:n 綺麗:綺麗:a", stops)
	second := p.Tokens("画面:画面:n 綺麗:綺麗:a", stops)
	if calls != 1 {
		t.Errorf("expected analyzer to run once, ran %d times", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("memoized result differs: %v vs %v", first, second)
	}

	// Callers may not corrupt the memo.
	first[0] = "changed"
	third := p.Tokens("画面:画面:n 綺麗:綺麗:a", stops)
	if third[0] != "画面" {
		t.Error("memo entry was mutated through a returned slice")
	}

	// A stopword edit is a new generation: the text is analyzed again.
	stops.AddDynamic("画面")
	after := p.Tokens("画面:画面:n 綺麗:綺麗:a", stops)
	if calls != 2 {
		t.Errorf("expected a fresh analysis after a stopword edit, calls=%d", calls)
	}
	if !reflect.DeepEqual(after, []string{"綺麗"}) {
		t.Errorf("tokens after edit = %v", after)
	}
	if p.MemoLen() != 2 {
		t.Errorf("MemoLen = %d, want 2", p.MemoLen())
	}

	p.Reset()
	if p.MemoLen() != 0 {
		t.Error("Reset should purge the memo")
	}
}

func TestPipelineCleansMarkup(t *testing.T) {
	var seen string
	p, err := NewPipeline(MorphologyFunc(func(text string) []Morpheme {
		seen = text
		return nil
	}), PipelineOptions{})
	if err != nil {
		t.Fatal(err)
	}
	p.Tokens("<p>とても<b>良い</b></p> https://example.com/x", nil)
	if seen != "とても 良い" {
		t.Errorf("analyzer saw %q", seen)
	}
}

func TestNewPipelineNilMorphology(t *testing.T) {
	if _, err := NewPipeline(nil, PipelineOptions{}); err == nil {
		t.Error("expected error for nil morphology")
	}
}

func TestPipelineCompounds(t *testing.T) {
	p, err := NewPipeline(scripted, PipelineOptions{
		Compounds: NewCompounds([]CompoundEntry{
			{Canonical: "カスタマーサポート", Variants: []string{"カスタマー サポート"}},
			{Canonical: "顧客満足度", Variants: []string{"顧客 満足 度"}},
			{Canonical: "料金プラン", Variants: []string{"料金 プラン"}},
		}),
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"adjacent parts", "カスタマー サポート 良い:良い:a", []string{"カスタマーサポート", "良い"}},
		// 度 alone is dropped by the length filter; merged first it survives.
		{"single character part", "顧客 満足 度 高い:高い:a", []string{"顧客満足度", "高い"}},
		{"particle between parts", "料金 の:の:o プラン", []string{"料金", "プラン"}},
		{"stopword between parts", "カスタマー する:する:v サポート", []string{"カスタマー", "サポート"}},
	}
	stops := stoplist.New([]string{"する"}, nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Tokens(tc.text, stops); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("tokens = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPipelineCompoundIsFiltered(t *testing.T) {
	p, err := NewPipeline(scripted, PipelineOptions{
		Compounds: NewCompounds([]CompoundEntry{{Canonical: "料金プラン", Variants: []string{"料金 プラン"}}}),
	})
	if err != nil {
		t.Fatal(err)
	}
	got := p.Tokens("料金 プラン 変更", stoplist.New(nil, []string{"料金プラン"}))
	if !reflect.DeepEqual(got, []string{"変更"}) {
		t.Errorf("a stopword canonical form should be dropped, got %v", got)
	}
}

func TestPipelineFingerprint(t *testing.T) {
	plain, _ := NewPipeline(scripted, PipelineOptions{})
	raw, _ := NewPipeline(scripted, PipelineOptions{SkipClean: true})
	dict, _ := NewPipeline(scripted, PipelineOptions{
		Compounds: NewCompounds([]CompoundEntry{{Canonical: "料金プラン", Variants: []string{"料金 プラン"}}}),
	})
	again, _ := NewPipeline(scripted, PipelineOptions{})

	if plain.Fingerprint() != again.Fingerprint() {
		t.Error("identical settings should share a fingerprint")
	}
	if plain.Fingerprint() == raw.Fingerprint() || plain.Fingerprint() == dict.Fingerprint() {
		t.Error("cleaning and compounds must be part of the fingerprint")
	}
}
