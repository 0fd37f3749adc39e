package cooccur

import (
	"math"
	"testing"
)

func TestJaccard(t *testing.T) {
	if got := Jaccard(2, 4, 4); math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("Jaccard = %f, want 1/3", got)
	}
	if got := Jaccard(3, 3, 3); got != 1 {
		t.Errorf("identical sets should score 1, got %f", got)
	}
	if got := Jaccard(0, 0, 0); got != 0 {
		t.Errorf("empty sets should score 0, got %f", got)
	}
}

func TestNPMIRange(t *testing.T) {
	cases := []struct{ nAB, nA, nB, n int64 }{
		{50, 50, 50, 100},
		{0, 50, 50, 100},
		{10, 20, 20, 100},
		{1, 1, 1, 1000000},
		{100, 100, 100, 100},
	}
	for _, tc := range cases {
		v := NPMI(tc.nAB, tc.nA, tc.nB, tc.n)
		if v < -1 || v > 1 || math.IsNaN(v) {
			t.Errorf("NPMI out of range: %f for %+v", v, tc)
		}
	}
	if NPMI(0, 10, 10, 100) != -1 {
		t.Error("never co-occurring pairs should score -1")
	}
	if NPMI(100, 100, 100, 100) != 1 {
		t.Error("pairs in every document should score 1")
	}
	if NPMI(25, 50, 50, 100) > 1e-9 || NPMI(25, 50, 50, 100) < -1e-9 {
		t.Error("independent pairs should score 0")
	}
	if NPMI(1, 0, 1, 10) != 0 {
		t.Error("degenerate counts should score 0")
	}
}

func TestNPMISymmetry(t *testing.T) {
	if math.Abs(NPMI(10, 20, 15, 100)-NPMI(10, 15, 20, 100)) > 1e-12 {
		t.Error("NPMI should be symmetric")
	}
}
