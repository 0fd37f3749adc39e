package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cognicore/koe/internal/llm"
	"github.com/cognicore/koe/internal/logging"
	"github.com/cognicore/koe/internal/table"
	"github.com/cognicore/koe/pkg/koe"
	"github.com/cognicore/koe/pkg/koe/config"
	"github.com/cognicore/koe/pkg/koe/store"
	"github.com/cognicore/koe/pkg/koe/store/sqlite"
)

type report struct {
	*koe.Result
	Summary  string        `json:"summary,omitempty"`
	Clusters *llm.Clusters `json:"clusters,omitempty"`
	Cache    cacheStats    `json:"cache"`
}

type cacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

func main() {
	var (
		input       = flag.String("input", "", "CSV, TSV or JSONL file (required)")
		analysisCfg = flag.String("config", "", "Analysis settings file (optional)")
		stoplistCfg = flag.String("stoplist", "", "Baseline stoplist file (optional, built-in list otherwise)")
		dynamicCfg  = flag.String("dynamic-stoplist", "", "Dynamic stoplist file (optional)")
		compounds   = flag.String("compounds", "", "Compound word dictionary (optional)")
		textCol     = flag.String("text", "", "Text column (overrides config)")
		topN        = flag.Int("top", 0, "Ranking length (overrides config)")
		maxRows     = flag.Int("max-rows", 0, "Stop reading after this many rows")
		summarize   = flag.Bool("summarize", false, "Ask the LLM for a markdown summary")
		structured  = flag.Bool("clusters", false, "Ask the LLM for opinion clusters")
		attrs       stringList
	)
	flag.Var(&attrs, "attr", "Attribute column (repeatable, overrides config)")
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}
	// .env is optional
	_ = godotenv.Load()

	loader := config.Loader{
		AnalysisPath:        *analysisCfg,
		StoplistPath:        *stoplistCfg,
		DynamicStoplistPath: *dynamicCfg,
		CompoundsPath:       *compounds,
	}
	components, err := loader.Load()
	if err != nil {
		log.Fatalf("load configs: %v", err)
	}
	cfg := components.Analysis
	cfg.ApplyEnv(os.Getenv)
	if *textCol != "" {
		cfg.TextColumn = *textCol
	}
	if len(attrs) > 0 {
		cfg.AttributeColumns = attrs
	}
	if *topN > 0 {
		cfg.TopN = *topN
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	var st store.Store
	if cfg.Cache.Path != "" {
		st, err = sqlite.OpenSQLite(ctx, cfg.Cache.Path)
		if err != nil {
			logger.Fatal("open cache: %v", err)
		}
	}

	engine, err := koe.New(koe.Config{
		Pipeline: components.Pipeline,
		Stops:    components.Stops,
		Store:    st,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("create engine: %v", err)
	}
	defer engine.Close()

	if err := engine.RestoreStopwords(ctx); err != nil {
		logger.Warn("%v", err)
	}

	rows, err := table.Load(*input, table.Options{MaxRows: *maxRows, Logger: logger})
	if err != nil {
		logger.Fatal("load %s: %v", *input, err)
	}
	logger.Info("loaded %d rows from %s", len(rows), *input)

	res, err := engine.Analyze(ctx, rows, cfg.Options())
	if err != nil {
		logger.Fatal("analyze: %v", err)
	}
	for _, n := range res.Notes {
		logger.Warn("%s skipped: %s", n.Section, n.Reason)
	}

	out := report{Result: res}
	if *summarize || *structured {
		client := newClient(cfg, logger)
		sample := llm.Sample(res.Docs, cfg.LLM.SampleSize, seedFrom(res.ConfigHash))
		lines := llm.FormatRows(sample, cfg.AttributeColumns)
		hasAttrs := len(cfg.AttributeColumns) > 0

		if *summarize {
			summary, err := client.Summarize(ctx, lines, hasAttrs, llm.GroundingBlock(res, 20))
			if err != nil {
				logger.Error("summarize: %v", err)
			}
			out.Summary = summary
		}
		if *structured {
			clusters, err := client.Structured(ctx, lines, hasAttrs)
			if err != nil {
				logger.Error("clusters: %v", err)
			}
			out.Clusters = clusters
		}
	}
	out.Cache.Hits, out.Cache.Misses = engine.CacheStats()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatal("marshal report: %v", err)
	}
	fmt.Println(string(data))
}

func newClient(cfg *config.Analysis, logger *logging.Logger) *llm.Client {
	if cfg.LLM.APIKey == "" {
		logger.Warn("KOE_LLM_API_KEY is not set; the endpoint may reject requests")
	}
	return &llm.Client{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Retry: llm.RetryPolicy{
			MaxAttempts: cfg.LLM.MaxAttempts,
			BaseDelay:   cfg.LLM.BaseDelay,
		},
		Logger: logger,
	}
}

// seedFrom derives the sampling seed from the result's config hash so the
// same data and settings send the same sample.
func seedFrom(hash string) uint64 {
	if len(hash) < 16 {
		return 0
	}
	v, err := strconv.ParseUint(hash[:16], 16, 64)
	if err != nil {
		return 0
	}
	return v
}
