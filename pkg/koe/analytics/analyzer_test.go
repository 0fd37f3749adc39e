package analytics

import (
	"math"
	"testing"

	"github.com/cognicore/koe/pkg/koe/ingest"
	"github.com/cognicore/koe/pkg/koe/stoplist"
)

func byWord(stats []stoplist.Stats) map[string]stoplist.Stats {
	out := make(map[string]stoplist.Stats, len(stats))
	for _, s := range stats {
		out[s.Word] = s
	}
	return out
}

func TestAnalyzerStopwordStats(t *testing.T) {
	a := NewAnalyzer()
	a.Process([]string{"利用", "料金", "料金"}, "A")
	a.Process([]string{"利用", "画面"}, "A")
	a.Process([]string{"利用", "対応"}, "B")
	a.Process([]string{"利用", "対応"}, "B")
	stats := a.Snapshot()

	if stats.TotalDocs != 4 {
		t.Fatalf("expected 4 docs, got %d", stats.TotalDocs)
	}
	sw := byWord(stats.StopwordStats())
	if len(sw) != 4 {
		t.Fatalf("expected 4 words, got %d", len(sw))
	}

	u := sw["利用"]
	if u.DF != 4 || u.DFPercent != 100 {
		t.Errorf("利用 df = %d (%f%%)", u.DF, u.DFPercent)
	}
	if math.Abs(u.CatEntropy-1) > 1e-9 {
		t.Errorf("evenly spread word entropy = %f, want 1", u.CatEntropy)
	}
	if sw["料金"].DF != 1 {
		t.Errorf("料金 should count once per document, got %d", sw["料金"].DF)
	}
	if sw["対応"].CatEntropy != 0 {
		t.Errorf("single-category word entropy = %f, want 0", sw["対応"].CatEntropy)
	}
	if u.Categories != 2 {
		t.Errorf("categories = %d, want 2", u.Categories)
	}
}

func TestAnalyzerEntropyUsesCategoryRates(t *testing.T) {
	a := NewAnalyzer()
	// Category A is three times larger, but the word appears in half of
	// each category's documents.
	for i := 0; i < 6; i++ {
		tokens := []string{"その他"}
		if i%2 == 0 {
			tokens = append(tokens, "感じ")
		}
		a.Process(tokens, "A")
	}
	a.Process([]string{"感じ"}, "B")
	a.Process([]string{"その他"}, "B")

	sw := byWord(a.Snapshot().StopwordStats())
	if math.Abs(sw["感じ"].CatEntropy-1) > 1e-9 {
		t.Errorf("entropy = %f, want 1", sw["感じ"].CatEntropy)
	}
}

func TestAnalyzerUncategorized(t *testing.T) {
	a := NewAnalyzer()
	a.ProcessDocuments([]ingest.Document{
		{Tokens: []string{"利用"}},
		{Tokens: []string{"利用", "料金"}},
	}, "")

	sw := byWord(a.Snapshot().StopwordStats())
	if sw["利用"].Categories != 0 || sw["利用"].CatEntropy != 0 {
		t.Errorf("uncategorized stats = %+v", sw["利用"])
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	a := NewAnalyzer()
	a.Process([]string{"利用"}, "A")
	snap := a.Snapshot()
	a.Process([]string{"利用"}, "A")

	if snap.TokenDF["利用"] != 1 || snap.TokenCats["利用"]["A"] != 1 {
		t.Error("snapshot changed after further processing")
	}
}

func TestSuggestFromDocuments(t *testing.T) {
	var docs []ingest.Document
	for i := 0; i < 10; i++ {
		cat := "A"
		if i%2 == 1 {
			cat = "B"
		}
		tokens := []string{"思う"}
		if cat == "A" {
			tokens = append(tokens, "料金")
		}
		docs = append(docs, ingest.Document{Tokens: tokens, Attrs: map[string]string{"plan": cat}})
	}
	a := NewAnalyzer()
	a.ProcessDocuments(docs, "plan")

	got := stoplist.New(nil, nil).SuggestCandidates(a.Snapshot().StopwordStats(), stoplist.DefaultThresholds())
	if len(got) != 1 || got[0].Word != "思う" {
		t.Errorf("suggestions = %+v", got)
	}
}
