package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/joho/godotenv"

	"github.com/cognicore/koe/internal/logging"
	"github.com/cognicore/koe/internal/table"
	"github.com/cognicore/koe/pkg/koe"
	"github.com/cognicore/koe/pkg/koe/config"
	"github.com/cognicore/koe/pkg/koe/ingest"
	"github.com/cognicore/koe/pkg/koe/store"
	"github.com/cognicore/koe/pkg/koe/store/sqlite"
)

type REPL struct {
	ctx     context.Context
	engine  *koe.Engine
	log     *logging.Logger
	rows    []ingest.Row
	opts    koe.Options
	res     *koe.Result
	saveTo  string // dynamic stoplist file written after edits
	columns []string
}

func main() {
	var (
		input       = flag.String("input", "", "CSV, TSV or JSONL file (required)")
		analysisCfg = flag.String("config", "", "Analysis settings file (optional)")
		stoplistCfg = flag.String("stoplist", "", "Baseline stoplist file (optional)")
		dynamicCfg  = flag.String("dynamic-stoplist", "", "Dynamic stoplist file, rewritten after edits (optional)")
		compounds   = flag.String("compounds", "", "Compound word dictionary (optional)")
		textCol     = flag.String("text", "", "Text column (overrides config)")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}
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
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	var st store.Store
	if cfg.Cache.Path != "" {
		if st, err = sqlite.OpenSQLite(ctx, cfg.Cache.Path); err != nil {
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
	if err := engine.RestoreStopwords(ctx); err != nil {
		logger.Warn("%v", err)
	}

	rows, err := table.Load(*input, table.Options{Logger: logger})
	if err != nil {
		logger.Fatal("load %s: %v", *input, err)
	}

	r := &REPL{
		ctx:     ctx,
		engine:  engine,
		log:     logger,
		rows:    rows,
		opts:    cfg.Options(),
		saveTo:  *dynamicCfg,
		columns: table.Columns(rows),
	}

	fmt.Println("Koe Survey Shell")
	fmt.Println()
	printHelp()
	fmt.Println()
	fmt.Printf("%d rows loaded from %s (columns: %s)\n\n", len(rows), *input, strings.Join(r.columns, ", "))
	r.analyze()

	p := prompt.New(
		r.executor,
		r.completer,
		prompt.OptionPrefix("koe >> "),
		prompt.OptionTitle("koe"),
	)
	p.Run()
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  analyze               - Re-run the analysis")
	fmt.Println("  top [n]               - Show the n most frequent words")
	fmt.Println("  pairs [k]             - Show the k heaviest co-occurrence edges")
	fmt.Println("  communities           - Show word communities")
	fmt.Println("  chi <attr>            - Show characteristic words per category")
	fmt.Println("  attr <col> [col...]   - Set attribute columns and re-run")
	fmt.Println("  stop add <word...>    - Add dynamic stopwords")
	fmt.Println("  stop rm <word...>     - Remove dynamic stopwords")
	fmt.Println("  stops                 - List dynamic stopwords")
	fmt.Println("  suggest               - Show stopword candidates")
	fmt.Println("  notes                 - Show skipped sections")
	fmt.Println("  cache                 - Show result cache hits and misses")
	fmt.Println("  help                  - Show this help")
	fmt.Println("  quit                  - Exit")
}

var commands = []prompt.Suggest{
	{Text: "analyze", Description: "Re-run the analysis"},
	{Text: "top", Description: "Most frequent words"},
	{Text: "pairs", Description: "Heaviest co-occurrence edges"},
	{Text: "communities", Description: "Word communities"},
	{Text: "chi", Description: "Characteristic words"},
	{Text: "attr", Description: "Set attribute columns"},
	{Text: "stop", Description: "Edit dynamic stopwords"},
	{Text: "stops", Description: "List dynamic stopwords"},
	{Text: "suggest", Description: "Stopword candidates"},
	{Text: "notes", Description: "Skipped sections"},
	{Text: "cache", Description: "Cache statistics"},
	{Text: "help", Description: "Show help"},
	{Text: "quit", Description: "Exit"},
}

func (r *REPL) completer(d prompt.Document) []prompt.Suggest {
	args := strings.Fields(d.TextBeforeCursor())
	if len(args) <= 1 && !strings.HasSuffix(d.TextBeforeCursor(), " ") {
		return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
	}
	switch args[0] {
	case "chi", "attr":
		var s []prompt.Suggest
		for _, c := range r.columns {
			if c != r.opts.TextColumn {
				s = append(s, prompt.Suggest{Text: c})
			}
		}
		return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
	case "stop":
		if len(args) == 1 || (len(args) == 2 && !strings.HasSuffix(d.TextBeforeCursor(), " ")) {
			return prompt.FilterHasPrefix([]prompt.Suggest{{Text: "add"}, {Text: "rm"}}, d.GetWordBeforeCursor(), true)
		}
	}
	return nil
}

func (r *REPL) executor(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "analyze":
		r.analyze()
	case "top":
		r.cmdTop(parts[1:])
	case "pairs":
		r.cmdPairs(parts[1:])
	case "communities":
		r.cmdCommunities()
	case "chi":
		r.cmdChi(parts[1:])
	case "attr":
		r.cmdAttr(parts[1:])
	case "stop":
		r.cmdStop(parts[1:])
	case "stops":
		r.cmdStops()
	case "suggest":
		r.cmdSuggest()
	case "notes":
		r.cmdNotes()
	case "cache":
		hits, misses := r.engine.CacheStats()
		fmt.Printf("Cache: %d hits, %d misses\n", hits, misses)
	case "help":
		printHelp()
	case "quit", "exit":
		fmt.Println("Goodbye!")
		os.Exit(r.shutdown())
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
}

// shutdown closes the engine, flushing the sqlite cache, and returns the
// process exit code.
func (r *REPL) shutdown() int {
	if err := r.engine.Close(); err != nil {
		r.log.Error("close engine: %v", err)
		return 1
	}
	return 0
}

func (r *REPL) analyze() {
	res, err := r.engine.Analyze(r.ctx, r.rows, r.opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	r.res = res
	fmt.Printf("Analyzed %d documents (%d with text), %d distinct words\n", res.Documents, res.WithText, res.Vocabulary)
}

func (r *REPL) ready() bool {
	if r.res == nil {
		fmt.Println("No analysis yet; run 'analyze'")
		return false
	}
	return true
}

func parseCount(args []string, def int) int {
	if len(args) == 0 {
		return def
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		fmt.Printf("Invalid count %q, using %d\n", args[0], def)
		return def
	}
	return n
}

func (r *REPL) cmdTop(args []string) {
	if !r.ready() {
		return
	}
	n := parseCount(args, 20)
	for i, w := range r.res.Ranking {
		if i >= n {
			break
		}
		fmt.Printf("  %3d. %s (%d)\n", w.Rank, w.Word, w.Frequency)
	}
}

func (r *REPL) cmdPairs(args []string) {
	if !r.ready() {
		return
	}
	if r.res.Graph == nil {
		fmt.Println("No co-occurrence graph (see 'notes')")
		return
	}
	k := parseCount(args, 20)
	for i, e := range r.res.Graph.Edges {
		if i >= k {
			break
		}
		fmt.Printf("  %s - %s: %d (jaccard %.3f, npmi %.3f)\n", e.Source, e.Target, e.Weight, e.Jaccard, e.NPMI)
	}
}

func (r *REPL) cmdCommunities() {
	if !r.ready() {
		return
	}
	g := r.res.Graph
	if g == nil || g.Communities == 0 {
		fmt.Println("No communities")
		return
	}
	groups := make([][]string, g.Communities)
	for _, n := range g.Nodes {
		if n.Community >= 0 && n.Community < len(groups) {
			groups[n.Community] = append(groups[n.Community], n.Word)
		}
	}
	for i, words := range groups {
		fmt.Printf("  [%d] %s\n", i, strings.Join(words, ", "))
	}
}

func (r *REPL) cmdChi(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: chi <attr>")
		return
	}
	if !r.ready() {
		return
	}
	report, ok := r.res.Characteristic[args[0]]
	if !ok {
		fmt.Printf("No characteristic words for %s (is it an attribute column? see 'attr')\n", args[0])
		return
	}
	fmt.Printf("%s: %d tables tested, %d skipped\n", report.Attribute, report.Tested, report.Skipped)
	for _, c := range report.Categories {
		fmt.Printf("  %s (%d docs)\n", c.Category, c.Docs)
		if len(c.Words) == 0 {
			fmt.Println("    (none)")
		}
		for _, w := range c.Words {
			fmt.Printf("    %s p=%.4g chi2=%.2f observed=%d expected=%.1f\n", w.Word, w.PValue, w.Statistic, w.Observed, w.Expected)
		}
	}
}

func (r *REPL) cmdAttr(args []string) {
	if len(args) < 1 {
		fmt.Printf("Attribute columns: %s\n", strings.Join(r.opts.AttributeColumns, ", "))
		return
	}
	r.opts.AttributeColumns = args
	r.analyze()
}

func (r *REPL) cmdStop(args []string) {
	if len(args) < 2 || (args[0] != "add" && args[0] != "rm") {
		fmt.Println("Usage: stop add|rm <word...>")
		return
	}
	var (
		changed bool
		err     error
	)
	if args[0] == "add" {
		changed, err = r.engine.AddStopwords(r.ctx, args[1:]...)
	} else {
		changed, err = r.engine.RemoveStopwords(r.ctx, args[1:]...)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !changed {
		fmt.Println("Stoplist unchanged")
		return
	}
	if r.saveTo != "" {
		if err := config.SaveStoplist(r.saveTo, r.engine.Stopwords().Dynamic()); err != nil {
			fmt.Printf("Error saving %s: %v\n", r.saveTo, err)
		}
	}
	r.analyze()
}

func (r *REPL) cmdStops() {
	dyn := r.engine.Stopwords().Dynamic()
	if len(dyn) == 0 {
		fmt.Println("No dynamic stopwords")
		return
	}
	fmt.Printf("%d dynamic stopwords: %s\n", len(dyn), strings.Join(dyn, ", "))
}

func (r *REPL) cmdSuggest() {
	if !r.ready() {
		return
	}
	if len(r.res.Suggestions) == 0 {
		fmt.Println("No stopword candidates")
		return
	}
	for _, c := range r.res.Suggestions {
		fmt.Printf("  %s df=%.1f%% entropy=%.2f score=%.3f\n", c.Word, c.DFPercent, c.CatEntropy, c.Score)
	}
}

func (r *REPL) cmdNotes() {
	if !r.ready() {
		return
	}
	if len(r.res.Notes) == 0 {
		fmt.Println("Every section was computed")
		return
	}
	for _, n := range r.res.Notes {
		fmt.Printf("  %s: %s\n", n.Section, n.Reason)
	}
}
