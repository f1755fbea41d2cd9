// Command crawler runs the acquisition pipeline: it fetches articles from
// the configured news sections and writes the metadata table and article
// files the corpus loader consumes. When configured it also records each
// document in PostgreSQL and announces the finished run on Kafka so the
// search service rebuilds its index.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressindex/pressindex/internal/crawl"
	"github.com/pressindex/pressindex/pkg/config"
	"github.com/pressindex/pressindex/pkg/kafka"
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
	slog.Info("starting crawl",
		"sections", len(cfg.Crawler.Sections),
		"max_articles", cfg.Crawler.MaxArticles,
		"output_dir", cfg.Crawler.OutputDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder crawl.Recorder
	if cfg.Postgres.Enabled() {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, document registry disabled", "error", err)
		} else {
			defer db.Close()
			recorder = crawl.NewRegistry(db)
			slog.Info("document registry enabled", "host", cfg.Postgres.Host)
		}
	}

	crawler := crawl.New(cfg.Crawler, recorder)
	stored, err := crawler.Run(ctx)
	if err != nil {
		slog.Error("crawl failed", "error", err)
		os.Exit(1)
	}
	if stored == 0 {
		slog.Error("crawl stored no articles")
		os.Exit(1)
	}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CorpusUpdated)
		defer producer.Close()
		event := crawl.CorpusUpdatedEvent{
			Articles:   stored,
			OutputDir:  cfg.Crawler.OutputDir,
			FinishedAt: time.Now().UTC(),
		}
		if err := producer.Publish(ctx, kafka.Event{Key: "corpus", Value: event}); err != nil {
			slog.Error("publishing corpus-updated event failed", "error", err)
		} else {
			slog.Info("corpus-updated event published", "topic", cfg.Kafka.Topics.CorpusUpdated)
		}
	}

	slog.Info("crawl finished", "articles", stored)
}
