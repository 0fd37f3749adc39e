package cooccur

import "math"

// Jaccard returns |A∩B| / |A∪B| over document sets.
func Jaccard(nAB, nA, nB int64) float64 {
	union := nA + nB - nAB
	if union <= 0 {
		return 0
	}
	return float64(nAB) / float64(union)
}

// NPMI returns normalized pointwise mutual information in [-1, 1]:
//
//	NPMI(a,b) = log(N·N_ab / (N_a·N_b)) / -log(N_ab / N)
//
// Pairs that never co-occur score -1; pairs present in every document
// score 1.
func NPMI(nAB, nA, nB, n int64) float64 {
	if n <= 0 || nA <= 0 || nB <= 0 {
		return 0
	}
	if nAB <= 0 {
		return -1
	}
	pAB := float64(nAB) / float64(n)
	if pAB >= 1 {
		return 1
	}
	pmi := math.Log(float64(nAB) * float64(n) / (float64(nA) * float64(nB)))
	v := pmi / -math.Log(pAB)
	return math.Max(-1, math.Min(1, v))
}
