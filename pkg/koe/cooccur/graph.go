package cooccur

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/cognicore/koe/pkg/koe/freq"
	"github.com/cognicore/koe/pkg/koe/internalerr"
	"github.com/cognicore/koe/pkg/koe/stoplist"
)

// Default rendering and selection parameters.
const (
	DefaultPairLimit  = 70
	DefaultSizeFactor = 100.0
	DefaultMinSize    = 300.0
	DefaultMaxSize    = 3000.0
	DefaultResolution = 1.0
	DefaultSeed       = 1
)

// Options configures Build. Zero values select the defaults above.
type Options struct {
	PairLimit   int     // K: number of heaviest pairs kept as edges
	SizeFactor  float64 // node size per occurrence
	MinSize     float64
	MaxSize     float64
	Resolution  float64 // modularity resolution
	Seed        uint64  // community detection seed
	Communities bool    // run community detection
}

func (o Options) withDefaults() Options {
	if o.PairLimit <= 0 {
		o.PairLimit = DefaultPairLimit
	}
	if o.SizeFactor <= 0 {
		o.SizeFactor = DefaultSizeFactor
	}
	if o.MinSize <= 0 {
		o.MinSize = DefaultMinSize
	}
	if o.MaxSize < o.MinSize {
		o.MaxSize = math.Max(DefaultMaxSize, o.MinSize)
	}
	if o.Resolution <= 0 {
		o.Resolution = DefaultResolution
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	return o
}

// Node is a word in the co-occurrence graph.
type Node struct {
	Word      string  `json:"word"`
	Frequency int     `json:"frequency"` // occurrences across all documents
	DocFreq   int64   `json:"doc_freq"`
	Size      float64 `json:"size"`
	Community int     `json:"community"` // -1 when detection is off
}

// Edge is a weighted undirected relation between two words.
type Edge struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Weight  int64   `json:"weight"`
	Jaccard float64 `json:"jaccard"`
	NPMI    float64 `json:"npmi"`
}

// Graph is the co-occurrence network handed to renderers.
type Graph struct {
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
	Communities int    `json:"communities"`
	TotalDocs   int64  `json:"total_docs"`
	TotalPairs  int    `json:"total_pairs"`
}

// Build counts document-level co-occurrence over stopword-filtered tokens,
// keeps the K heaviest pairs as edges, sizes nodes by global frequency and
// optionally groups them into communities. It returns an insufficient-data
// error when no pair survives.
func Build(docs [][]string, stops *stoplist.Set, opts Options) (*Graph, error) {
	opts = opts.withDefaults()

	counter := NewCounter()
	filtered := make([][]string, len(docs))
	for i, tokens := range docs {
		kept := make([]string, 0, len(tokens))
		for _, t := range tokens {
			if !stops.IsStop(t) {
				kept = append(kept, t)
			}
		}
		filtered[i] = kept
		counter.AddDocument(kept)
	}

	top := counter.TopPairs(opts.PairLimit)
	if len(top) == 0 {
		return nil, internalerr.Insufficient("cooccur", "co-occurrence pairs")
	}

	global := freq.CountDocuments(filtered, nil)

	words := make([]string, 0, len(top)*2)
	index := make(map[string]int)
	for _, pc := range top {
		for _, w := range []string{pc.A, pc.B} {
			if _, ok := index[w]; !ok {
				index[w] = -1
				words = append(words, w)
			}
		}
	}
	sort.Strings(words)
	for i, w := range words {
		index[w] = i
	}

	g := &Graph{
		Nodes:      make([]Node, len(words)),
		Edges:      make([]Edge, len(top)),
		TotalDocs:  counter.TotalDocs(),
		TotalPairs: counter.UniquePairs(),
	}
	for i, w := range words {
		f := global.Get(w)
		g.Nodes[i] = Node{
			Word:      w,
			Frequency: f,
			DocFreq:   counter.DocFreq(w),
			Size:      clamp(float64(f)*opts.SizeFactor, opts.MinSize, opts.MaxSize),
			Community: -1,
		}
	}
	for i, pc := range top {
		nA, nB := counter.DocFreq(pc.A), counter.DocFreq(pc.B)
		g.Edges[i] = Edge{
			Source:  pc.A,
			Target:  pc.B,
			Weight:  pc.Weight,
			Jaccard: Jaccard(pc.Weight, nA, nB),
			NPMI:    NPMI(pc.Weight, nA, nB, counter.TotalDocs()),
		}
	}

	if opts.Communities {
		g.Communities = assignCommunities(g, index, opts)
	}
	return g, nil
}

// assignCommunities runs Louvain modularity clustering over the edge set and
// numbers communities by descending size, then by their first word.
func assignCommunities(g *Graph, index map[string]int, opts Options) int {
	wg := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range g.Nodes {
		wg.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges {
		from := simple.Node(int64(index[e.Source]))
		to := simple.Node(int64(index[e.Target]))
		wg.SetWeightedEdge(wg.NewWeightedEdge(from, to, float64(e.Weight)))
	}

	src := rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)
	reduced := community.Modularize(wg, opts.Resolution, src)

	var groups [][]int
	for _, members := range reduced.Communities() {
		if len(members) == 0 {
			continue
		}
		ids := make([]int, len(members))
		for i, n := range members {
			ids[i] = int(n.ID())
		}
		sort.Ints(ids)
		groups = append(groups, ids)
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return groups[i][0] < groups[j][0]
	})
	for cid, ids := range groups {
		for _, id := range ids {
			g.Nodes[id].Community = cid
		}
	}
	return len(groups)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
