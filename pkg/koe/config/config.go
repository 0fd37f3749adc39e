package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/koe/pkg/koe"
	"github.com/cognicore/koe/pkg/koe/chisq"
	"github.com/cognicore/koe/pkg/koe/cooccur"
	"github.com/cognicore/koe/pkg/koe/freq"
	"github.com/cognicore/koe/pkg/koe/ingest"
	"github.com/cognicore/koe/pkg/koe/internalerr"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &sl, nil
}

// SaveStoplist writes stopwords in the format LoadStoplist reads.
func SaveStoplist(path string, terms []string) error {
	data, err := yaml.Marshal(Stoplist{Terms: terms})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadCompounds loads the compound/synonym dictionary.
// Format: canonical|variant1|variant2, one entry per line. Variants list the
// analyzer tokens separated by spaces.
func LoadCompounds(path string) ([]ingest.CompoundEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []ingest.CompoundEntry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		entries = append(entries, ingest.CompoundEntry{
			Canonical: parts[0],
			Variants:  parts[1:],
		})
	}
	return entries, nil
}

// NodeSize bounds co-occurrence node sizes.
type NodeSize struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Factor float64 `yaml:"factor"`
}

// Cache configures result caching.
type Cache struct {
	Path         string `yaml:"path"` // sqlite file; empty keeps results in memory
	TokenEntries int    `yaml:"token_entries"`
}

// LLM configures the summarization client.
type LLM struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"-"`
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	SampleSize  int           `yaml:"sample_size"`
}

// Analysis is the analysis configuration file.
type Analysis struct {
	TextColumn          string   `yaml:"text_column"`
	AttributeColumns    []string `yaml:"attribute_columns"`
	TopN                int      `yaml:"top_n"`
	PairLimit           int      `yaml:"pair_limit"`
	CharLimit           int      `yaml:"char_limit"`
	Significance        float64  `yaml:"significance"`
	NoCorrection        bool     `yaml:"no_correction"`
	NodeSize            NodeSize `yaml:"node_size"`
	Communities         *bool    `yaml:"communities"`
	CommunityResolution float64  `yaml:"community_resolution"`
	LogLevel            string   `yaml:"log_level"`
	Cache               Cache    `yaml:"cache"`
	LLM                 LLM      `yaml:"llm"`
}

// DefaultAnalysis returns the configuration used when no file is given.
func DefaultAnalysis() *Analysis {
	communities := true
	return &Analysis{
		TextColumn:          "text",
		TopN:                freq.DefaultTopN,
		PairLimit:           cooccur.DefaultPairLimit,
		CharLimit:           chisq.DefaultLimit,
		Significance:        chisq.DefaultSignificance,
		NodeSize:            NodeSize{Min: cooccur.DefaultMinSize, Max: cooccur.DefaultMaxSize, Factor: cooccur.DefaultSizeFactor},
		Communities:         &communities,
		CommunityResolution: cooccur.DefaultResolution,
		LogLevel:            "info",
		Cache:               Cache{TokenEntries: ingest.DefaultMemoEntries},
		LLM: LLM{
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions",
			Model:       "gemini-2.5-flash",
			MaxAttempts: 5,
			BaseDelay:   time.Second,
			SampleSize:  100,
		},
	}
}

// LoadAnalysis reads an analysis file over the defaults.
func LoadAnalysis(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultAnalysis()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no analysis can run with.
func (a *Analysis) Validate() error {
	switch {
	case strings.TrimSpace(a.TextColumn) == "":
		return fmt.Errorf("%w: text_column is required", internalerr.ErrInvalidConfig)
	case a.Significance < 0 || a.Significance >= 1:
		return fmt.Errorf("%w: significance must be in [0,1), got %v", internalerr.ErrInvalidConfig, a.Significance)
	case a.NodeSize.Max > 0 && a.NodeSize.Min > a.NodeSize.Max:
		return fmt.Errorf("%w: node_size.min %v exceeds max %v", internalerr.ErrInvalidConfig, a.NodeSize.Min, a.NodeSize.Max)
	case a.CommunityResolution < 0:
		return fmt.Errorf("%w: community_resolution must not be negative", internalerr.ErrInvalidConfig)
	}
	for _, col := range a.AttributeColumns {
		if col == a.TextColumn {
			return fmt.Errorf("%w: %q is both text and attribute column", internalerr.ErrInvalidConfig, col)
		}
	}
	return nil
}

// ApplyEnv overrides settings from KOE_* variables. getenv is usually
// os.Getenv.
func (a *Analysis) ApplyEnv(getenv func(string) string) {
	if v := getenv("KOE_LLM_API_KEY"); v != "" {
		a.LLM.APIKey = v
	}
	if v := getenv("KOE_LLM_BASE_URL"); v != "" {
		a.LLM.BaseURL = v
	}
	if v := getenv("KOE_LLM_MODEL"); v != "" {
		a.LLM.Model = v
	}
	if v := getenv("KOE_LOG_LEVEL"); v != "" {
		a.LogLevel = v
	}
	if v := getenv("KOE_CACHE_PATH"); v != "" {
		a.Cache.Path = v
	}
}

// Options converts the file settings into engine options.
func (a *Analysis) Options() koe.Options {
	communities := a.Communities == nil || *a.Communities
	return koe.Options{
		TextColumn:       a.TextColumn,
		AttributeColumns: append([]string(nil), a.AttributeColumns...),
		TopN:             a.TopN,
		Graph: cooccur.Options{
			PairLimit:   a.PairLimit,
			SizeFactor:  a.NodeSize.Factor,
			MinSize:     a.NodeSize.Min,
			MaxSize:     a.NodeSize.Max,
			Resolution:  a.CommunityResolution,
			Communities: communities,
		},
		Chisq: chisq.Options{
			Significance: a.Significance,
			Limit:        a.CharLimit,
			NoCorrection: a.NoCorrection,
		},
	}
}
