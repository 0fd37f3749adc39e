package ingest

// Class is the coarse part-of-speech of a morpheme.
type Class int

const (
	ClassOther Class = iota
	ClassNoun
	ClassVerb
	ClassAdjective
)

func (c Class) String() string {
	switch c {
	case ClassNoun:
		return "noun"
	case ClassVerb:
		return "verb"
	case ClassAdjective:
		return "adjective"
	default:
		return "other"
	}
}

// Content reports whether the class carries meaning worth counting.
func (c Class) Content() bool {
	return c == ClassNoun || c == ClassVerb || c == ClassAdjective
}

// Morpheme is one unit produced by a morphological analyzer.
type Morpheme struct {
	Surface string
	Base    string // dictionary form; falls back to Surface when unknown
	Class   Class
}

// Morphology segments text into morphemes in input order.
type Morphology interface {
	Analyze(text string) []Morpheme
}

// MorphologyFunc adapts a function to the Morphology interface.
type MorphologyFunc func(text string) []Morpheme

func (f MorphologyFunc) Analyze(text string) []Morpheme { return f(text) }
