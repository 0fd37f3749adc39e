package chisq

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Contingency is a 2×2 table of document counts for one word and one
// category value:
//
//	            in category   not in category
//	has word         A               B
//	lacks word       C               D
type Contingency struct {
	A, B, C, D int64
}

// TestResult is the outcome of a chi-squared independence test on a table.
type TestResult struct {
	Statistic float64
	PValue    float64
	Expected  float64 // expected count for cell A under independence
}

// N returns the total number of documents in the table.
func (t Contingency) N() int64 { return t.A + t.B + t.C + t.D }

// Degenerate reports whether any row or column marginal is zero, in which
// case the test is undefined.
func (t Contingency) Degenerate() bool {
	return t.A+t.B == 0 || t.C+t.D == 0 || t.A+t.C == 0 || t.B+t.D == 0
}

// Test runs Pearson's chi-squared test with one degree of freedom. With
// correction set, Yates' continuity correction moves each observed cell
// towards its expectation by at most 0.5. ok is false for degenerate tables.
func (t Contingency) Test(correction bool) (res TestResult, ok bool) {
	if t.Degenerate() {
		return TestResult{}, false
	}
	n := float64(t.N())
	row1, row2 := float64(t.A+t.B), float64(t.C+t.D)
	col1, col2 := float64(t.A+t.C), float64(t.B+t.D)

	observed := [4]float64{float64(t.A), float64(t.B), float64(t.C), float64(t.D)}
	expected := [4]float64{row1 * col1 / n, row1 * col2 / n, row2 * col1 / n, row2 * col2 / n}

	var stat float64
	for i := range observed {
		o, e := observed[i], expected[i]
		if correction {
			diff := e - o
			o += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
		}
		stat += (o - e) * (o - e) / e
	}

	dist := distuv.ChiSquared{K: 1}
	return TestResult{
		Statistic: stat,
		PValue:    dist.Survival(stat),
		Expected:  expected[0],
	}, true
}
