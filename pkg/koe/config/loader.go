package config

import (
	"fmt"

	"github.com/cognicore/koe/pkg/koe/ingest"
	"github.com/cognicore/koe/pkg/koe/stoplist"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	AnalysisPath        string
	StoplistPath        string // baseline override; built-in list when empty
	DynamicStoplistPath string
	CompoundsPath       string

	// Morphology overrides the kagome analyzer, mainly for tests.
	Morphology ingest.Morphology
}

// Components holds all loaded configuration components
type Components struct {
	Analysis  *Analysis
	Stops     *stoplist.Set
	Compounds *ingest.Compounds
	Pipeline  *ingest.Pipeline
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Analysis: DefaultAnalysis()}

	if l.AnalysisPath != "" {
		cfg, err := LoadAnalysis(l.AnalysisPath)
		if err != nil {
			return nil, fmt.Errorf("load analysis: %w", err)
		}
		comp.Analysis = cfg
	}

	baseline := stoplist.DefaultBaseline
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		baseline = sl.Terms
	}
	var dynamic []string
	if l.DynamicStoplistPath != "" {
		sl, err := LoadStoplist(l.DynamicStoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load dynamic stoplist: %w", err)
		}
		dynamic = sl.Terms
	}
	comp.Stops = stoplist.New(baseline, dynamic)

	if l.CompoundsPath != "" {
		entries, err := LoadCompounds(l.CompoundsPath)
		if err != nil {
			return nil, fmt.Errorf("load compounds: %w", err)
		}
		comp.Compounds = ingest.NewCompounds(entries)
	}

	morph := l.Morphology
	if morph == nil {
		k, err := ingest.NewKagome()
		if err != nil {
			return nil, err
		}
		morph = k
	}
	p, err := ingest.NewPipeline(morph, ingest.PipelineOptions{
		MemoEntries: comp.Analysis.Cache.TokenEntries,
		Compounds:   comp.Compounds,
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	comp.Pipeline = p

	return comp, nil
}
