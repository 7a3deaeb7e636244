package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/auditware/ticket-sentinel/internal/cache"
	"github.com/auditware/ticket-sentinel/internal/config"
	"github.com/auditware/ticket-sentinel/internal/ingest"
	"github.com/auditware/ticket-sentinel/internal/logger"
	"github.com/auditware/ticket-sentinel/internal/vocabstore"
)

func main() {
	var (
		configPath   = flag.String("config", "configs/config.yaml", "Configuration file path")
		inputFile    = flag.String("input", "", "Input term file (CSV, Parquet, or JSON lines)")
		exportFile   = flag.String("export", "", "Export curated vocabulary to a YAML data file")
		exportVer    = flag.String("export-version", "", "Version string stamped on the exported vocabulary")
		batchSize    = flag.Int("batch-size", 500, "Batch size for processing")
		validateOnly = flag.Bool("validate-only", false, "Only validate data, don't write to database")
		clearCache   = flag.Bool("clear-cache", false, "Clear the Redis document cache and exit")
		showStats    = flag.Bool("stats", false, "Show vocabulary store statistics and exit")
	)
	flag.Parse()

	if *inputFile == "" && *exportFile == "" && !*clearCache && !*showStats {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input terms.csv --batch-size 200\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --export vocabulary.yaml --export-version 2026-08-29\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --clear-cache\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Ticket-Sentinel vocabulary tool",
		zap.String("version", "0.1.0"),
		zap.String("config", *configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	if *clearCache {
		if err := clearDocumentCache(ctx, cfg, log); err != nil {
			log.Fatal("Failed to clear cache", zap.Error(err))
		}
		return
	}

	store, err := vocabstore.NewStore(&vocabstore.Config{
		DatabaseURL:     cfg.Store.DatabaseURL,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	}, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize vocabulary store", zap.Error(err))
	}
	defer store.Close()

	switch {
	case *showStats:
		err = showStoreStats(ctx, store)
	case *exportFile != "":
		err = exportVocabulary(ctx, store, *exportFile, *exportVer, log)
	default:
		err = ingestTerms(ctx, store, *inputFile, *batchSize, *validateOnly, log)
	}
	if err != nil {
		log.Fatal("Operation failed", zap.Error(err))
	}

	log.Info("Vocabulary tool completed successfully")
}

// ingestTerms loads a term export file into the store
func ingestTerms(ctx context.Context, store *vocabstore.Store, inputFile string, batchSize int, validateOnly bool, log *logger.Logger) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	if validateOnly {
		log.Info("Validate-only run, records will not be written")
	}

	pipeline := ingest.NewPipeline(store, &ingest.Config{
		BatchSize:      batchSize,
		ValidateData:   true,
		ProgressReport: 1000,
		DryRun:         validateOnly,
	}, log.Logger)

	result, err := pipeline.ProcessFile(ctx, inputFile)
	if err != nil {
		return fmt.Errorf("pipeline processing failed: %w", err)
	}

	log.Info("Term ingest completed",
		zap.String("file", inputFile),
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("duplicates", result.Duplicates),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("database_time", result.DatabaseTime))

	if len(result.Errors) > 0 {
		log.Warn("Processing completed with errors", zap.Strings("errors", result.Errors))
	}

	return nil
}

// exportVocabulary writes the curated vocabulary as a YAML data file
func exportVocabulary(ctx context.Context, store *vocabstore.Store, exportFile, version string, log *logger.Logger) error {
	tables, err := store.Export(ctx, version)
	if err != nil {
		return fmt.Errorf("failed to export vocabulary: %w", err)
	}

	data, err := yaml.Marshal(tables)
	if err != nil {
		return fmt.Errorf("failed to marshal vocabulary: %w", err)
	}

	if err := os.WriteFile(exportFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}

	log.Info("Vocabulary exported",
		zap.String("file", exportFile),
		zap.String("version", version),
		zap.Int("single_terms", len(tables.SingleTerms)),
		zap.Int("compound_terms", len(tables.CompoundTerms)),
		zap.Int("identifier_patterns", len(tables.IdentifierPatterns)))

	return nil
}

// showStoreStats displays current vocabulary store statistics
func showStoreStats(ctx context.Context, store *vocabstore.Store) error {
	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store stats: %w", err)
	}

	fmt.Printf("\n=== Ticket-Sentinel Vocabulary Store Statistics ===\n")
	fmt.Printf("Total Terms:          %d\n", stats.TotalTerms)
	fmt.Printf("Single Terms:         %d\n", stats.SingleCount)
	fmt.Printf("Compound Terms:       %d\n", stats.CompoundCount)
	fmt.Printf("Identifier Patterns:  %d\n", stats.PatternCount)
	fmt.Printf("Tech Abbreviations:   %d\n", stats.AbbrevCount)

	return nil
}

// clearDocumentCache wipes cached redaction results, forcing recomputation
// after a vocabulary change.
func clearDocumentCache(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if !cfg.Cache.Enabled {
		return fmt.Errorf("document cache is not enabled")
	}

	docCache, err := cache.New(&cache.Config{
		RedisURL:   cfg.Cache.RedisURL,
		KeyPrefix:  cfg.Cache.KeyPrefix,
		DefaultTTL: cfg.Cache.DefaultTTL,
	}, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to cache: %w", err)
	}
	defer docCache.Close()

	if err := docCache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	log.Info("Document cache cleared")
	return nil
}
