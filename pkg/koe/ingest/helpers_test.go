package ingest

import "strings"

// scripted is a deterministic Morphology for tests. Input text is a
// space-separated list of "surface:base:class" triples where class is one
// of n, v, a or o. A bare word is treated as a noun whose base is itself.
var scripted = MorphologyFunc(func(text string) []Morpheme {
	var out []Morpheme
	for _, field := range strings.Fields(text) {
		parts := strings.Split(field, ":")
		m := Morpheme{Surface: parts[0], Base: parts[0], Class: ClassNoun}
		if len(parts) > 1 {
			m.Base = parts[1]
		}
		if len(parts) > 2 {
			switch parts[2] {
			case "v":
				m.Class = ClassVerb
			case "a":
				m.Class = ClassAdjective
			case "o":
				m.Class = ClassOther
			}
		}
		out = append(out, m)
	}
	return out
})
