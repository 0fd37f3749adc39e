package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cognicore/koe/pkg/koe"
	"github.com/cognicore/koe/pkg/koe/chisq"
	"github.com/cognicore/koe/pkg/koe/freq"
	"github.com/cognicore/koe/pkg/koe/ingest"
)

func TestFormatRows(t *testing.T) {
	docs := []ingest.Document{
		{Text: "料金が\n高い", HasText: true, Attrs: map[string]string{"年代": "30代", "性別": "女性"}},
		{Text: "対応が丁寧", HasText: true, Attrs: map[string]string{"年代": "40代"}},
		{HasText: false},
		{Text: "   ", HasText: true},
	}

	got := FormatRows(docs, []string{"年代", "性別"})
	want := []string{
		"[30代 | 女性] || 料金が 高い",
		"[40代 | N/A] || 対応が丁寧",
	}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	plain := FormatRows(docs, nil)
	if len(plain) != 2 || plain[1] != "対応が丁寧" {
		t.Errorf("plain = %q", plain)
	}
}

func TestSample(t *testing.T) {
	var docs []ingest.Document
	for i := 0; i < 250; i++ {
		docs = append(docs, ingest.Document{Index: i, Text: fmt.Sprintf("回答%d", i), HasText: true})
	}
	docs = append(docs, ingest.Document{Index: 250})

	a := Sample(docs, 0, 7)
	b := Sample(docs, 0, 7)
	if len(a) != DefaultSampleSize {
		t.Fatalf("len = %d, want %d", len(a), DefaultSampleSize)
	}
	for i := range a {
		if a[i].Index != b[i].Index {
			t.Fatal("same seed must give the same sample")
		}
		if i > 0 && a[i-1].Index >= a[i].Index {
			t.Fatal("sample should keep input order")
		}
		if !a[i].HasText {
			t.Fatal("documents without text must not be sampled")
		}
	}

	small := Sample(docs[:10], 100, 1)
	if len(small) != 10 {
		t.Errorf("small input should be returned whole, got %d", len(small))
	}
}

func TestSummaryPromptSections(t *testing.T) {
	if strings.Contains(SummaryPrompt(false), "属性別") {
		t.Error("attribute section without attributes")
	}
	if !strings.Contains(SummaryPrompt(true), "属性別の傾向") {
		t.Error("attribute section missing")
	}
}

func TestGroundingBlock(t *testing.T) {
	res := &koe.Result{
		Ranking: []freq.Ranked{{Rank: 1, Word: "料金", Frequency: 12}, {Rank: 2, Word: "対応", Frequency: 8}},
		Characteristic: map[string]*chisq.Report{
			"plan": {Attribute: "plan", Categories: []chisq.CategoryResult{
				{Category: "basic", Words: []chisq.Result{{Word: "料金"}}},
				{Category: "premium"},
			}},
		},
	}
	got := GroundingBlock(res, 0)
	if !strings.Contains(got, "料金(12), 対応(8)") {
		t.Errorf("top words missing: %q", got)
	}
	if !strings.Contains(got, "plan=basic の特徴語: 料金") {
		t.Errorf("characteristic words missing: %q", got)
	}
	if strings.Contains(got, "premium") {
		t.Errorf("empty categories should be omitted: %q", got)
	}
	if GroundingBlock(nil, 5) != "" {
		t.Error("nil result should render nothing")
	}
}
