// Command searchd serves ranked full-text queries over the article corpus.
// On startup it restores the persisted index when it is fresh, rebuilding
// otherwise, and then answers queries from the immutable in-memory index.
// A corpus-updated Kafka event triggers a rebuild and an atomic index swap.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressindex/pressindex/internal/corpus"
	"github.com/pressindex/pressindex/internal/crawl"
	"github.com/pressindex/pressindex/internal/index/store"
	"github.com/pressindex/pressindex/internal/index/tokenizer"
	"github.com/pressindex/pressindex/internal/search"
	"github.com/pressindex/pressindex/internal/search/cache"
	"github.com/pressindex/pressindex/internal/search/handler"
	"github.com/pressindex/pressindex/pkg/config"
	"github.com/pressindex/pressindex/pkg/health"
	"github.com/pressindex/pressindex/pkg/kafka"
	"github.com/pressindex/pressindex/pkg/logger"
	"github.com/pressindex/pressindex/pkg/metrics"
	"github.com/pressindex/pressindex/pkg/middleware"
	pkgredis "github.com/pressindex/pressindex/pkg/redis"
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
	slog.Info("starting search service", "port", cfg.Server.Port)

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tok := tokenizer.Default()
	provider := search.NewProvider()
	if err := loadOrBuild(ctx, cfg, tok, provider, m); err != nil {
		slog.Error("initial index preparation failed", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Kafka.Enabled() {
		rebuildHandler := handleCorpusUpdated(cfg, tok, provider, queryCache, m)
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CorpusUpdated, rebuildHandler)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("corpus-updated consumer error", "error", err)
			}
		}()
		slog.Info("rebuild trigger armed", "topic", cfg.Kafka.Topics.CorpusUpdated)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		engine := provider.Current()
		if engine == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no index published"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", engine.Docs(), engine.Terms()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(provider, queryCache, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics server listening", "addr", addr)
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// loadOrBuild prepares a ready engine and publishes it. A persisted index is
// reused only when its fingerprint and document count still match the corpus
// on disk; anything else (absent, corrupt, version-mismatched, stale) causes
// a rebuild that overwrites the blob.
func loadOrBuild(ctx context.Context, cfg *config.Config, tok *tokenizer.Tokenizer, provider *search.Provider, m *metrics.Metrics) error {
	c, err := corpus.Load(cfg.Corpus.MetadataPath, cfg.Corpus.ArticlesDir)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	observeCorpus(m, c)

	engine := search.NewEngine(tok)
	artifacts, meta, loadErr := store.Load(cfg.Index.Path)
	switch {
	case loadErr == nil && meta.Fingerprint == c.Fingerprint() && meta.N == c.Len():
		if err := engine.Restore(c, artifacts); err != nil {
			return fmt.Errorf("restoring index: %w", err)
		}
	case loadErr == nil:
		slog.Warn("persisted index is stale, rebuilding",
			"persisted_docs", meta.N,
			"corpus_docs", c.Len(),
		)
		engine, err = rebuild(ctx, cfg, tok, c, m)
		if err != nil {
			return err
		}
	default:
		slog.Warn("persisted index unusable, rebuilding", "error", loadErr)
		engine, err = rebuild(ctx, cfg, tok, c, m)
		if err != nil {
			return err
		}
	}

	if err := provider.Publish(engine); err != nil {
		return fmt.Errorf("publishing index: %w", err)
	}
	m.IndexDocuments.Set(float64(engine.Docs()))
	m.IndexTerms.Set(float64(engine.Terms()))
	return nil
}

// rebuild runs the full pipeline over an already-loaded corpus and persists
// the fresh artifacts.
func rebuild(ctx context.Context, cfg *config.Config, tok *tokenizer.Tokenizer, c *corpus.Corpus, m *metrics.Metrics) (*search.Engine, error) {
	start := time.Now()
	engine := search.NewEngine(tok)
	if err := engine.Build(ctx, c, cfg.Index.BuildWorkers); err != nil {
		m.IndexBuildsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("building index: %w", err)
	}
	artifacts, err := engine.Artifacts()
	if err != nil {
		return nil, err
	}
	if err := store.Save(cfg.Index.Path, artifacts); err != nil {
		slog.Error("persisting rebuilt index failed", "error", err)
	}
	m.IndexBuildsTotal.WithLabelValues("success").Inc()
	m.IndexBuildDuration.Observe(time.Since(start).Seconds())
	return engine, nil
}

// handleCorpusUpdated returns the Kafka handler that reloads the corpus,
// rebuilds, swaps the published engine, and drops the query cache.
func handleCorpusUpdated(cfg *config.Config, tok *tokenizer.Tokenizer, provider *search.Provider, queryCache *cache.QueryCache, m *metrics.Metrics) kafka.MessageHandler {
	log := slog.Default().With("component", "rebuild-trigger")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[crawl.CorpusUpdatedEvent](value)
		if err != nil {
			log.Error("failed to decode corpus-updated event", "error", err)
			return nil
		}
		log.Info("corpus updated, rebuilding index",
			"articles", event.Articles,
			"finished_at", event.FinishedAt,
		)

		c, err := corpus.Load(cfg.Corpus.MetadataPath, cfg.Corpus.ArticlesDir)
		if err != nil {
			return fmt.Errorf("reloading corpus: %w", err)
		}
		observeCorpus(m, c)
		engine, err := rebuild(ctx, cfg, tok, c, m)
		if err != nil {
			return err
		}
		if err := provider.Publish(engine); err != nil {
			return err
		}
		m.IndexDocuments.Set(float64(engine.Docs()))
		m.IndexTerms.Set(float64(engine.Terms()))

		if queryCache != nil {
			if err := queryCache.Invalidate(ctx); err != nil {
				log.Error("cache invalidation after swap failed", "error", err)
			}
		}
		log.Info("index swapped", "documents", engine.Docs(), "terms", engine.Terms())
		return nil
	}
}

func observeCorpus(m *metrics.Metrics, c *corpus.Corpus) {
	stats := c.Stats()
	m.CorpusRowsSkipped.WithLabelValues("malformed_row").Add(float64(stats.MalformedRows))
	m.CorpusRowsSkipped.WithLabelValues("missing_document").Add(float64(stats.MissingDocuments))
}

