// Command builder performs one batch index build: it loads the corpus,
// builds the inverted index and document vectors, and persists the result
// as a versioned blob for the search service to load.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pressindex/pressindex/internal/corpus"
	"github.com/pressindex/pressindex/internal/index/store"
	"github.com/pressindex/pressindex/internal/index/tokenizer"
	"github.com/pressindex/pressindex/internal/search"
	"github.com/pressindex/pressindex/pkg/config"
	"github.com/pressindex/pressindex/pkg/logger"
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
	slog.Info("starting index build",
		"metadata", cfg.Corpus.MetadataPath,
		"articles_dir", cfg.Corpus.ArticlesDir,
		"index_path", cfg.Index.Path,
	)
	start := time.Now()

	c, err := corpus.Load(cfg.Corpus.MetadataPath, cfg.Corpus.ArticlesDir)
	if err != nil {
		slog.Error("corpus load failed", "error", err)
		os.Exit(1)
	}

	engine := search.NewEngine(tokenizer.Default())
	if err := engine.Build(context.Background(), c, cfg.Index.BuildWorkers); err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	artifacts, err := engine.Artifacts()
	if err != nil {
		slog.Error("exporting artifacts failed", "error", err)
		os.Exit(1)
	}
	if err := store.Save(cfg.Index.Path, artifacts); err != nil {
		slog.Error("persisting index failed", "error", err)
		os.Exit(1)
	}

	slog.Info("index build complete",
		"documents", engine.Docs(),
		"terms", engine.Terms(),
		"path", cfg.Index.Path,
		"duration", time.Since(start),
	)
}
