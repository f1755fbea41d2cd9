// Command extractor runs the pattern-extraction pass over the corpus and
// writes a JSON report of everything it found. When PostgreSQL is
// configured the per-document matches are also stored for querying.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pressindex/pressindex/internal/corpus"
	"github.com/pressindex/pressindex/internal/extract"
	"github.com/pressindex/pressindex/pkg/config"
	"github.com/pressindex/pressindex/pkg/logger"
	"github.com/pressindex/pressindex/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := corpus.Load(cfg.Corpus.MetadataPath, cfg.Corpus.ArticlesDir)
	if err != nil {
		slog.Error("loading corpus failed", "error", err)
		os.Exit(1)
	}

	extractor := extract.New(extract.DefaultPatterns(), cfg.Extraction.ContextWindow)
	report, err := extractor.Run(ctx, c.All(), cfg.Extraction.Workers)
	if err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	if err := writeReport(cfg.Extraction.OutputPath, report); err != nil {
		slog.Error("writing report failed", "path", cfg.Extraction.OutputPath, "error", err)
		os.Exit(1)
	}
	slog.Info("extraction report written", "path", cfg.Extraction.OutputPath, "documents", len(report.Documents))

	if cfg.Postgres.Enabled() {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, skipping match storage", "error", err)
		} else {
			defer db.Close()
			sink := extract.NewSink(db)
			if err := sink.StoreReport(ctx, report); err != nil {
				slog.Error("storing matches failed", "error", err)
				os.Exit(1)
			}
			slog.Info("matches stored", "host", cfg.Postgres.Host)
		}
	}

	for name, count := range report.Counts {
		slog.Info("pattern summary", "pattern", name, "matches", count)
	}
}

func writeReport(path string, report *extract.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
