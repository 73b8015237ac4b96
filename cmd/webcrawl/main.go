package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"webcrawl/pkg/assemble"
	"webcrawl/pkg/config"
	"webcrawl/pkg/crawler"
	"webcrawl/pkg/models"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)

	configFileFlag := flag.String("config", "", "Path to YAML config file (optional)")
	seedsFlag := flag.String("seeds", "", "Comma-separated seed URLs (overrides config)")
	limitFlag := flag.Int("limit", 0, "Maximum number of fetch attempts (overrides config)")
	fullFlag := flag.Bool("full", true, "Run structured extraction on every page")
	politeFlag := flag.Bool("polite", true, "Honor robots.txt")
	outputAsFlag := flag.String("output-as", "", "Result packaging: table, dict or dataframe")
	outFlag := flag.String("out", "", "Output file (default stdout)")
	jsonlFlag := flag.Bool("jsonl", false, "Emit JSON Lines regardless of -output-as")
	sqliteFlag := flag.String("sqlite", "", "Also export pages and similarity network to this SQLite file")
	similarityFlag := flag.Float64("similarity-threshold", 0.5, "Jaccard link-overlap threshold for similarity edges")
	keywordsFlag := flag.String("keywords", "", "Comma-separated required keywords")
	excludeKeywordsFlag := flag.String("exclude-keywords", "", "Comma-separated excluded keywords")
	stateDirFlag := flag.String("state-dir", "", "Directory for the persistent visited-URL database")
	resumeFlag := flag.Bool("resume", false, "Resume: keep the visited-URL database from a previous run")
	logLevelFlag := flag.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevelFlag)
	if err != nil {
		log.Warnf("Invalid log level '%s', using 'info': %v", *logLevelFlag, err)
	} else {
		log.SetLevel(level)
	}

	cfg := config.NewCrawlConfig()
	if *configFileFlag != "" {
		yamlFile, readErr := os.ReadFile(*configFileFlag)
		if readErr != nil {
			log.Fatalf("Read config file '%s' error: %v", *configFileFlag, readErr)
		}
		if unmarshalErr := yaml.Unmarshal(yamlFile, cfg); unmarshalErr != nil {
			log.Fatalf("Parse config file '%s' error: %v", *configFileFlag, unmarshalErr)
		}
	}
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	applyFlagOverrides(cfg, setFlags, *seedsFlag, *limitFlag, *fullFlag, *politeFlag,
		*outputAsFlag, *keywordsFlag, *excludeKeywordsFlag, *stateDirFlag, *resumeFlag)

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		log.Warnf("Received signal %v, shutting down gracefully...", sig)
		cancel()
		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal %v, forcing exit", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded, forcing exit")
			os.Exit(1)
		}
	}()

	engine, err := crawler.NewCrawler(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize crawler: %v", err)
	}
	defer engine.Close()

	result, err := engine.Run(ctx)
	if err != nil {
		log.Fatalf("Crawl failed: %v", err)
	}

	out := io.Writer(os.Stdout)
	if *outFlag != "" {
		file, createErr := os.Create(*outFlag)
		if createErr != nil {
			log.Fatalf("Failed to create output file '%s': %v", *outFlag, createErr)
		}
		defer file.Close()
		out = file
	}

	if writeErr := writeResult(out, result.Pages, cfg.OutputAs, *jsonlFlag); writeErr != nil {
		log.Fatalf("Failed to write results: %v", writeErr)
	}

	if *sqliteFlag != "" {
		edges := assemble.SimilarityNetwork(result.Pages, *similarityFlag)
		if exportErr := assemble.ExportSQLite(ctx, *sqliteFlag, result.Pages, edges); exportErr != nil {
			log.Errorf("SQLite export failed: %v", exportErr)
		} else {
			log.Infof("Exported %d pages and %d similarity edges to %s", len(result.Pages), len(edges), *sqliteFlag)
		}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		log.Warn("Crawl cancelled gracefully.")
	}
}

// applyFlagOverrides layers command-line values over the (possibly
// file-loaded) configuration. Zero flag values leave the config alone;
// the boolean -full and -polite flags, whose zero value is meaningful,
// only override when they were passed explicitly (per setFlags).
func applyFlagOverrides(cfg *config.CrawlConfig, setFlags map[string]bool, seeds string, limit int, full, polite bool,
	outputAs, keywords, excludeKeywords, stateDir string, resume bool) {
	if seeds != "" {
		cfg.SeedURLs = splitList(seeds)
	}
	if limit > 0 {
		cfg.VisitLimit = limit
	}
	if setFlags["full"] {
		cfg.Full = full
	}
	if setFlags["polite"] {
		cfg.BePolite = polite
	}
	if outputAs != "" {
		cfg.OutputAs = outputAs
	}
	if keywords != "" {
		cfg.RequiredKeywords = splitList(keywords)
	}
	if excludeKeywords != "" {
		cfg.ExcludedKeywords = splitList(excludeKeywords)
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	if resume {
		cfg.Resume = true
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// writeResult renders pages in the requested packaging: table (and its
// dataframe alias) as TSV, dict as a JSON array of records. The jsonl
// switch forces JSON Lines for piping into other tools.
func writeResult(w io.Writer, pages []models.VisitedPage, outputAs string, jsonl bool) error {
	if jsonl {
		return assemble.WriteJSONL(w, pages)
	}
	switch outputAs {
	case config.OutputDict:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(assemble.Dict(pages))
	case config.OutputTable, config.OutputDataframe:
		return assemble.WriteTSV(w, pages)
	default:
		return fmt.Errorf("unknown output packaging %q", outputAs)
	}
}
