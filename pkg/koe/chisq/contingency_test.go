package chisq

import (
	"math"
	"testing"
)

func TestContingencyYates(t *testing.T) {
	table := Contingency{A: 20, B: 0, C: 0, D: 20}

	res, ok := table.Test(true)
	if !ok {
		t.Fatal("table should be testable")
	}
	if math.Abs(res.Statistic-36.1) > 1e-9 {
		t.Errorf("statistic = %f, want 36.1", res.Statistic)
	}
	if res.Expected != 10 {
		t.Errorf("expected = %f, want 10", res.Expected)
	}
	if res.PValue <= 0 || res.PValue > 1e-8 {
		t.Errorf("p-value = %g, want a tiny positive value", res.PValue)
	}

	raw, _ := table.Test(false)
	if math.Abs(raw.Statistic-40) > 1e-9 {
		t.Errorf("uncorrected statistic = %f, want 40", raw.Statistic)
	}
	if raw.PValue >= res.PValue {
		t.Error("continuity correction should make the test more conservative")
	}
}

func TestContingencySmallTable(t *testing.T) {
	// 好き across ["猫が好き", "猫と犬が好き", "犬が嫌い"] with A,A,B.
	res, ok := Contingency{A: 2, B: 0, C: 0, D: 1}.Test(true)
	if !ok {
		t.Fatal("table should be testable")
	}
	if math.Abs(res.Statistic-0.1875) > 1e-9 {
		t.Errorf("statistic = %f, want 0.1875", res.Statistic)
	}
	if math.Abs(res.Expected-4.0/3.0) > 1e-9 {
		t.Errorf("expected = %f, want 4/3", res.Expected)
	}
	if res.PValue < 0.05 {
		t.Errorf("three documents should not be significant, p = %f", res.PValue)
	}
}

func TestContingencyIndependent(t *testing.T) {
	res, ok := Contingency{A: 10, B: 10, C: 10, D: 10}.Test(false)
	if !ok {
		t.Fatal("table should be testable")
	}
	if res.Statistic != 0 || math.Abs(res.PValue-1) > 1e-12 {
		t.Errorf("independent table: stat=%f p=%f", res.Statistic, res.PValue)
	}
}

func TestContingencyDegenerate(t *testing.T) {
	tables := []Contingency{
		{A: 0, B: 0, C: 5, D: 5},  // word absent everywhere
		{A: 5, B: 5, C: 0, D: 0},  // word present everywhere
		{A: 0, B: 3, C: 0, D: 7},  // empty category
		{A: 4, B: 0, C: 6, D: 0},  // every document in the category
		{},
	}
	for _, tc := range tables {
		if _, ok := tc.Test(true); ok {
			t.Errorf("%+v should be skipped", tc)
		}
	}
}
