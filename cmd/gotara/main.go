// Command gotara translates text and HTML between English and Taralians.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/gotara"
	"github.com/ZaguanLabs/gotara/cache"
	"github.com/ZaguanLabs/gotara/internal/logger"
	"github.com/ZaguanLabs/gotara/processor"
	"github.com/ZaguanLabs/gotara/rules"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	direction  gotara.TranslationDirection
	output     string
	expr       string
	html       bool
	text       bool
	foldWidth  bool
	cacheTTL   int
	redisURL   string
	sqlitePath string
	importFile string
	exportFile string
	rulesPath  string
	listRules  bool
	diffFile   string
	dryRun     bool
	jsonOutput bool
	quiet      bool
	logLevel   string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gotara", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opt options
	direction := fs.String("direction", "auto", "Translation direction: auto, englishToTaralians (e2t) or taraliansToEnglish (t2e)")
	directionShort := fs.String("d", "", "Translation direction (short for --direction)")
	fs.StringVar(&opt.output, "output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	fs.StringVar(&opt.expr, "e", "", "Translate this text instead of reading input")
	fs.BoolVar(&opt.html, "html", false, "Treat input as an HTML document")
	fs.BoolVar(&opt.text, "text", false, "Translate input line by line")
	fs.BoolVar(&opt.foldWidth, "fold-width", false, "Accept full-width katakana in Taralians input")
	fs.IntVar(&opt.cacheTTL, "cache-ttl", 3600, "In-memory cache TTL in seconds (0 to disable)")
	fs.StringVar(&opt.redisURL, "redis", "", "Redis URL for a shared translation cache")
	fs.StringVar(&opt.sqlitePath, "sqlite", "", "SQLite file for a persistent translation cache")
	fs.StringVar(&opt.importFile, "import-cache", "", "Load cached translations from a JSON export before translating")
	fs.StringVar(&opt.exportFile, "export-cache", "", "Write the cache as JSON after translating")
	fs.StringVar(&opt.rulesPath, "rules", "", "Rule file to use instead of the built-in rules")
	fs.BoolVar(&opt.listRules, "list-rules", false, "Print the rules for --direction and exit")
	fs.StringVar(&opt.diffFile, "diff", "", "Compare with previous version and show changes")
	fs.BoolVar(&opt.dryRun, "dry-run", false, "Show what would be translated without translating")
	fs.BoolVar(&opt.jsonOutput, "json", false, "Output result as JSON")
	fs.BoolVar(&opt.quiet, "quiet", false, "Suppress progress output")
	fs.StringVar(&opt.logLevel, "log-level", "warn", "Log level: debug, info, warn, error, off")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		bi := gotara.Build()
		fmt.Fprintf(stdout, "%s %s (%s)\n", bi.Name, bi.Version, bi.GoVersion)
		if bi.Commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", bi.Commit)
		}
		if bi.BuildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", bi.BuildDate)
		}
		return nil
	}

	// Handle short aliases
	if *outputShort != "" && opt.output == "" {
		opt.output = *outputShort
	}
	if *directionShort != "" {
		*direction = *directionShort
	}

	dir, err := gotara.ParseDirection(*direction)
	if err != nil {
		return err
	}
	opt.direction = dir

	if opt.html && opt.text {
		return fmt.Errorf("--html and --text are mutually exclusive")
	}

	table := rules.Default()
	if opt.rulesPath != "" {
		table, err = loadRules(opt.rulesPath)
		if err != nil {
			return err
		}
	}

	if opt.listRules {
		return listRules(stdout, table, opt.direction)
	}

	input, inputName, err := readInput(fs, opt, stdin)
	if err != nil {
		return err
	}

	if opt.diffFile != "" {
		return runDiff(input, inputName, opt, stdout)
	}
	if opt.dryRun {
		return runDryRun(input, inputName, opt, stdout)
	}

	log := logger.New(logger.Options{
		Level:   opt.logLevel,
		Format:  "console",
		Service: gotara.Name,
		Writer:  stderr,
	})

	ctx := context.Background()
	translatorOpts := []gotara.TranslatorOption{
		gotara.WithRuleTable(table),
		gotara.WithProcessor(processor.NewHTMLProcessor()),
		gotara.WithProcessor(processor.NewTextProcessor()),
		gotara.WithWidthFolding(opt.foldWidth),
		gotara.WithLogger(log),
	}

	c, closeCache, err := openCache(ctx, opt)
	if err != nil {
		return err
	}
	defer closeCache()
	if c != nil {
		translatorOpts = append(translatorOpts, gotara.WithCache(c))
	} else if opt.importFile != "" || opt.exportFile != "" {
		return fmt.Errorf("--import-cache and --export-cache need a cache")
	}

	if opt.importFile != "" {
		res, err := cache.NewImporter(c).ImportFromFile(opt.importFile)
		if err != nil {
			return fmt.Errorf("importing cache: %w", err)
		}
		log.Info().
			Int("imported", res.Imported).
			Int("skipped", res.Skipped).
			Int("failed", res.Failed).
			Msg("cache imported")
	}

	translator := gotara.NewTranslator(translatorOpts...)

	if !opt.quiet && (opt.html || opt.text) {
		fmt.Fprintf(stderr, "Translating %s (%s)...\n", inputName, opt.direction)
	}

	start := time.Now()
	var result *gotara.ProcessedContent
	switch {
	case opt.html:
		result, err = translator.ProcessHTML(ctx, input, opt.direction)
	case opt.text:
		result, err = translator.ProcessText(ctx, input, opt.direction)
	default:
		result, err = translateWhole(translator, input, opt.direction)
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	if opt.exportFile != "" {
		meta := map[string]string{"source": inputName, "rules": ruleSource(opt.rulesPath)}
		if err := cache.NewExporter(c).ExportToFile(opt.exportFile, meta); err != nil {
			return fmt.Errorf("exporting cache: %w", err)
		}
	}

	// Output
	var out io.Writer = stdout
	if opt.output != "" {
		f, err := os.Create(opt.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if opt.jsonOutput {
		return outputJSON(out, result, elapsed)
	}

	fmt.Fprint(out, result.Content)
	if !opt.html && !opt.text && opt.output == "" && !strings.HasSuffix(result.Content, "\n") {
		fmt.Fprintln(out)
	}

	// Stats
	if !opt.quiet && (opt.html || opt.text) {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Nodes found:  %d\n", result.TotalNodes)
		fmt.Fprintf(stderr, "  Translated:   %d\n", result.TranslatedCount)
		fmt.Fprintf(stderr, "  From cache:   %d\n", result.CachedCount)
	}

	return nil
}

// readInput returns the text given with -e, the named file, or stdin.
func readInput(fs *flag.FlagSet, opt options, stdin io.Reader) (string, string, error) {
	if opt.expr != "" {
		return opt.expr, "argument", nil
	}

	if fs.NArg() == 0 || fs.Arg(0) == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	// User-provided path is intentional for CLI
	inputPath := fs.Arg(0)
	data, err := os.ReadFile(inputPath) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(inputPath), nil
}

func ruleSource(path string) string {
	if path == "" {
		return "builtin"
	}
	return filepath.Base(path)
}

func loadRules(path string) (*rules.Table, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	table, err := rules.ParseTable(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	return table, nil
}

// openCache picks Redis, then SQLite, then an in-memory cache. The returned
// close function is never nil.
func openCache(ctx context.Context, opt options) (gotara.TranslationCache, func(), error) {
	switch {
	case opt.redisURL != "":
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: opt.redisURL, TTL: opt.cacheTTL})
		if err != nil {
			return nil, func() {}, fmt.Errorf("connecting to redis: %w", err)
		}
		return c, func() { _ = c.Close() }, nil
	case opt.sqlitePath != "":
		c, err := cache.NewSQLiteCache(opt.sqlitePath, opt.cacheTTL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("opening sqlite cache: %w", err)
		}
		return c, func() { _ = c.Close() }, nil
	case opt.cacheTTL > 0:
		return cache.NewInMemoryCache(opt.cacheTTL), func() {}, nil
	}
	return nil, func() {}, nil
}

// translateWhole translates the input as one piece of text.
func translateWhole(t *gotara.Translator, input string, dir gotara.TranslationDirection) (*gotara.ProcessedContent, error) {
	return t.TranslateResult(strings.TrimRight(input, "\n"), dir)
}

func listRules(w io.Writer, table *rules.Table, dir gotara.TranslationDirection) error {
	var rd rules.Direction
	switch dir {
	case gotara.DirectionEnglishToTaralians:
		rd = rules.EnglishToTaralians
	case gotara.DirectionTaraliansToEnglish:
		rd = rules.TaraliansToEnglish
	}
	for _, r := range table.Rules(rd) {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

// extractor returns the processor matching the input mode.
func extractor(opt options) gotara.ContentProcessor {
	if opt.html {
		return processor.NewHTMLProcessor()
	}
	return processor.NewTextProcessor()
}

// runDryRun shows what would be translated.
func runDryRun(input, inputName string, opt options, stdout io.Writer) error {
	_, nodes, err := extractor(opt).Extract(input)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	if opt.jsonOutput {
		type dryRunOutput struct {
			InputFile string   `json:"input_file"`
			Direction string   `json:"direction"`
			NodeCount int      `json:"node_count"`
			Texts     []string `json:"texts"`
		}

		texts := make([]string, len(nodes))
		for i, n := range nodes {
			texts[i] = n.Text
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dryRunOutput{
			InputFile: inputName,
			Direction: string(opt.direction),
			NodeCount: len(nodes),
			Texts:     texts,
		})
	}

	fmt.Fprintf(stdout, "Dry run: %s (%s)\n", inputName, opt.direction)
	fmt.Fprintf(stdout, "Found %d translatable text nodes:\n\n", len(nodes))

	for i, node := range nodes {
		fmt.Fprintf(stdout, "%3d. %q\n", i+1, truncate(node.Text, 60))
		if node.Context != "" {
			fmt.Fprintf(stdout, "     Context: %s\n", node.Context)
		}
	}

	return nil
}

// runDiff compares new content with a previous version and shows what changed.
func runDiff(newContent, inputName string, opt options, stdout io.Writer) error {
	oldData, err := os.ReadFile(opt.diffFile) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return fmt.Errorf("reading previous version: %w", err)
	}

	proc := extractor(opt)

	_, oldNodes, err := proc.Extract(string(oldData))
	if err != nil {
		return fmt.Errorf("parsing previous version: %w", err)
	}

	_, newNodes, err := proc.Extract(newContent)
	if err != nil {
		return fmt.Errorf("parsing new version: %w", err)
	}

	diff := gotara.DiffNodes(oldNodes, newNodes)
	stats := diff.Stats()

	if opt.jsonOutput {
		type modified struct {
			Old string `json:"old"`
			New string `json:"new"`
		}
		type diffOutput struct {
			InputFile        string            `json:"input_file"`
			PreviousFile     string            `json:"previous_file"`
			Stats            map[string]int    `json:"stats"`
			NeedsTranslation []string          `json:"needs_translation"`
			Added            []string          `json:"added,omitempty"`
			Removed          []string          `json:"removed,omitempty"`
			Modified         []modified        `json:"modified,omitempty"`
			Context          map[string]string `json:"context,omitempty"`
		}

		out := diffOutput{
			InputFile:    inputName,
			PreviousFile: filepath.Base(opt.diffFile),
			Stats: map[string]int{
				"added":     stats.Added,
				"removed":   stats.Removed,
				"modified":  stats.Modified,
				"unchanged": stats.Unchanged,
			},
			NeedsTranslation: []string{},
		}
		for _, n := range diff.NeedsTranslation() {
			out.NeedsTranslation = append(out.NeedsTranslation, n.Text)
		}
		for _, n := range diff.Added {
			out.Added = append(out.Added, n.Text)
		}
		for _, n := range diff.Removed {
			out.Removed = append(out.Removed, n.Text)
		}
		for _, m := range diff.Modified {
			out.Modified = append(out.Modified, modified{Old: m.Old.Text, New: m.New.Text})
			if m.New.Context != "" {
				if out.Context == nil {
					out.Context = make(map[string]string)
				}
				out.Context[m.New.Text] = m.New.Context
			}
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(stdout, "Diff: %s vs %s\n\n", inputName, filepath.Base(opt.diffFile))

	fmt.Fprintf(stdout, "Summary:\n")
	fmt.Fprintf(stdout, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(stdout, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(stdout, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(stdout, "  Modified:  %d\n", stats.Modified)
	fmt.Fprintf(stdout, "\n")

	if !diff.HasChanges() {
		fmt.Fprintf(stdout, "No changes detected. All translations are up to date.\n")
		return nil
	}

	fmt.Fprintf(stdout, "Needs translation: %d strings\n\n", len(diff.NeedsTranslation()))

	if len(diff.Added) > 0 {
		fmt.Fprintf(stdout, "Added:\n")
		for _, n := range diff.Added {
			fmt.Fprintf(stdout, "  + %q\n", truncate(n.Text, 50))
		}
		fmt.Fprintf(stdout, "\n")
	}

	if len(diff.Modified) > 0 {
		fmt.Fprintf(stdout, "Modified:\n")
		for _, m := range diff.Modified {
			fmt.Fprintf(stdout, "  ~ %q -> %q\n", truncate(m.Old.Text, 30), truncate(m.New.Text, 30))
		}
		fmt.Fprintf(stdout, "\n")
	}

	if len(diff.Removed) > 0 {
		fmt.Fprintf(stdout, "Removed:\n")
		for _, n := range diff.Removed {
			fmt.Fprintf(stdout, "  - %q\n", truncate(n.Text, 50))
		}
		fmt.Fprintf(stdout, "\n")
	}

	return nil
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	Content         string `json:"content"`
	Direction       string `json:"direction"`
	TotalNodes      int    `json:"total_nodes"`
	TranslatedCount int    `json:"translated_count"`
	CachedCount     int    `json:"cached_count"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

// outputJSON writes the result as JSON.
func outputJSON(w io.Writer, result *gotara.ProcessedContent, elapsed time.Duration) error {
	out := JSONOutput{
		Content:         result.Content,
		Direction:       string(result.Direction),
		TotalNodes:      result.TotalNodes,
		TranslatedCount: result.TranslatedCount,
		CachedCount:     result.CachedCount,
		ElapsedMs:       elapsed.Milliseconds(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
