package cooccur

import (
	"testing"
)

func TestCounterBasic(t *testing.T) {
	counter := NewCounter()
	counter.AddDocument([]string{"料金", "プラン", "変更"})

	if counter.TotalDocs() != 1 {
		t.Errorf("Expected 1 document, got %d", counter.TotalDocs())
	}
	if counter.DocFreq("プラン") != 1 {
		t.Error("Token 'プラン' should have count 1")
	}
	// 3 tokens → 3 pairs
	if counter.UniquePairs() != 3 {
		t.Errorf("Expected 3 unique pairs, got %d", counter.UniquePairs())
	}
}

func TestCounterPresenceNotFrequency(t *testing.T) {
	counter := NewCounter()
	counter.AddDocument([]string{"画面", "画面", "見る", "画面", "見る"})

	if got := counter.PairCount("画面", "見る"); got != 1 {
		t.Errorf("repeated words in one document should count once, got %d", got)
	}
	if counter.DocFreq("画面") != 1 {
		t.Errorf("DocFreq = %d, want 1", counter.DocFreq("画面"))
	}
	if counter.PairCount("画面", "画面") != 0 {
		t.Error("self pairs must never be counted")
	}
}

func TestCounterCanonicalOrdering(t *testing.T) {
	counter := NewCounter()
	counter.AddDocument([]string{"zebra", "apple"})

	if counter.PairCount("zebra", "apple") != counter.PairCount("apple", "zebra") {
		t.Error("Pair count should be symmetric")
	}
	if counter.PairCount("apple", "zebra") != 1 {
		t.Errorf("Expected count 1, got %d", counter.PairCount("apple", "zebra"))
	}
	if p := NewPair("b", "a"); p.A != "a" || p.B != "b" {
		t.Errorf("NewPair not canonical: %+v", p)
	}
}

func TestCounterMultipleDocuments(t *testing.T) {
	counter := NewCounter()
	docs := [][]string{
		{"a", "b"},
		{"a", "c"},
		{"b", "c"},
		{"a", "b", "c"},
	}
	for _, doc := range docs {
		counter.AddDocument(doc)
	}

	if counter.TotalDocs() != 4 {
		t.Errorf("Expected 4 docs, got %d", counter.TotalDocs())
	}
	if counter.DocFreq("a") != 3 {
		t.Errorf("Token 'a' should appear in 3 docs, got %d", counter.DocFreq("a"))
	}
	for _, p := range [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}} {
		if got := counter.PairCount(p[0], p[1]); got != 2 {
			t.Errorf("Pair %v should co-occur 2 times, got %d", p, got)
		}
	}
	if counter.UniqueTokens() != 3 {
		t.Errorf("Expected 3 unique tokens, got %d", counter.UniqueTokens())
	}
}

func TestCounterEmptyDocument(t *testing.T) {
	counter := NewCounter()
	counter.AddDocument([]string{})
	counter.AddDocument([]string{"", "a"})

	if counter.TotalDocs() != 2 {
		t.Error("Empty documents should still increment doc count")
	}
	if counter.UniquePairs() != 0 {
		t.Error("Documents with fewer than two words add no pairs")
	}
}

func TestTopPairsTieBreak(t *testing.T) {
	counter := NewCounter()
	for i := 0; i < 5; i++ {
		counter.AddDocument([]string{"aa", "bb"})
	}
	for i := 0; i < 3; i++ {
		counter.AddDocument([]string{"ee", "ff"})
		counter.AddDocument([]string{"cc", "dd"})
	}

	for run := 0; run < 20; run++ {
		top := counter.TopPairs(2)
		if len(top) != 2 {
			t.Fatalf("Expected 2 pairs, got %d", len(top))
		}
		if top[0].Pair != (Pair{A: "aa", B: "bb"}) || top[0].Weight != 5 {
			t.Fatalf("heaviest pair missing: %+v", top[0])
		}
		if top[1].Pair != (Pair{A: "cc", B: "dd"}) {
			t.Fatalf("tie should resolve to the canonically smaller pair, got %+v", top[1])
		}
	}

	if all := counter.TopPairs(0); len(all) != 3 {
		t.Errorf("TopPairs(0) should return all pairs, got %d", len(all))
	}
}
