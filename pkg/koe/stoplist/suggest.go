package stoplist

import "sort"

// Stats holds per-word corpus statistics used to judge stopword candidates.
type Stats struct {
	Word       string
	DF         int64
	DFPercent  float64
	CatEntropy float64 // normalized to [0,1]
	Categories int     // distinct categories in the corpus; 0 when uncategorized
}

// Candidate represents a suggested stopword
type Candidate struct {
	Word       string
	DFPercent  float64
	CatEntropy float64
	Score      float64
}

// Thresholds defines criteria for stopword suggestions
type Thresholds struct {
	DFPercent  float64 // e.g., 60% - appears in 60% of documents
	CatEntropy float64 // e.g., 0.8 - spread evenly across categories
	MinDF      int64   // ignore words seen in fewer documents
}

// DefaultThresholds returns sensible default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent:  40.0,
		CatEntropy: 0.8,
		MinDF:      3,
	}
}

// SuggestCandidates proposes words that appear in a large share of documents
// and are spread evenly across categories. Words already excluded are
// skipped. Nothing is added to the set.
func (s *Set) SuggestCandidates(stats []Stats, th Thresholds) []Candidate {
	var out []Candidate
	for _, st := range stats {
		if s.IsStop(st.Word) {
			continue
		}
		if st.DF < th.MinDF || st.DFPercent < th.DFPercent {
			continue
		}
		// Without categories only document frequency can be judged.
		if st.Categories > 1 && st.CatEntropy < th.CatEntropy {
			continue
		}
		out = append(out, Candidate{
			Word:       st.Word,
			DFPercent:  st.DFPercent,
			CatEntropy: st.CatEntropy,
			Score:      (st.DFPercent/100.0 + st.CatEntropy) / 2.0,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Word < out[j].Word
		}
		return out[i].Score > out[j].Score
	})
	return out
}
