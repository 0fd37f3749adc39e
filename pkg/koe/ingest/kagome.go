package ingest

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/cognicore/koe/pkg/koe/internalerr"
)

// Kagome is a Morphology backed by kagome and the IPA dictionary.
// Loading the dictionary is expensive; create one per process and share it.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome loads the IPA dictionary. A failure here is fatal for the
// whole pipeline; callers must not fall back to another segmentation.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrAnalyzerUnavailable, err)
	}
	return &Kagome{t: t}, nil
}

// Analyze implements Morphology.
func (k *Kagome) Analyze(text string) []Morpheme {
	if text == "" {
		return nil
	}
	ktoks := k.t.Tokenize(text)
	out := make([]Morpheme, 0, len(ktoks))
	for _, kt := range ktoks {
		base, ok := kt.BaseForm()
		if !ok || base == "" || base == "*" {
			base = kt.Surface
		}
		var major string
		if pos := kt.POS(); len(pos) > 0 {
			major = pos[0]
		}
		out = append(out, Morpheme{
			Surface: kt.Surface,
			Base:    base,
			Class:   classOf(major),
		})
	}
	return out
}

func classOf(major string) Class {
	switch major {
	case "名詞":
		return ClassNoun
	case "動詞":
		return ClassVerb
	case "形容詞":
		return ClassAdjective
	default:
		return ClassOther
	}
}
