// Command searchcli is an interactive console for the retrieval engine:
// it prepares the index (restoring a fresh persisted blob when possible)
// and answers queries typed on stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressindex/pressindex/internal/corpus"
	"github.com/pressindex/pressindex/internal/index/store"
	"github.com/pressindex/pressindex/internal/index/tokenizer"
	"github.com/pressindex/pressindex/internal/search"
	"github.com/pressindex/pressindex/pkg/config"
	"github.com/pressindex/pressindex/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	rebuild := flag.Bool("rebuild", false, "force a rebuild even when a persisted index exists")
	topK := flag.Int("top", 10, "number of results per query")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, "text")

	c, err := corpus.Load(cfg.Corpus.MetadataPath, cfg.Corpus.ArticlesDir)
	if err != nil {
		slog.Error("corpus load failed", "error", err)
		os.Exit(1)
	}

	engine, err := prepare(cfg, c, *rebuild)
	if err != nil {
		slog.Error("index preparation failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("pressindex: %d documents, %d terms. Type a query, or 'quit' to exit.\n",
		engine.Docs(), engine.Terms())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("query> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") {
			break
		}

		results, err := engine.Search(query, *topK)
		if err != nil {
			fmt.Printf("search failed: %v\n", err)
			continue
		}
		if len(results) == 0 {
			fmt.Println("no matching documents.")
			continue
		}
		for i, r := range results {
			fmt.Printf("%d. score %.4f  %s\n", i+1, r.Score, r.Title)
			fmt.Printf("   date: %s\n", r.Date)
			fmt.Printf("   url:  %s\n", r.URL)
			if r.Snippet != "" {
				fmt.Printf("   %s\n", truncate(r.Snippet, 200))
			}
			fmt.Println()
		}
	}
}

// prepare restores a persisted index when it matches the corpus, building
// from scratch otherwise.
func prepare(cfg *config.Config, c *corpus.Corpus, forceRebuild bool) (*search.Engine, error) {
	engine := search.NewEngine(tokenizer.Default())

	if !forceRebuild {
		artifacts, meta, err := store.Load(cfg.Index.Path)
		if err == nil && meta.Fingerprint == c.Fingerprint() && meta.N == c.Len() {
			if err := engine.Restore(c, artifacts); err == nil {
				return engine, nil
			}
		} else if err != nil {
			slog.Debug("persisted index not reusable", "error", err)
		}
	}

	if err := engine.Build(context.Background(), c, cfg.Index.BuildWorkers); err != nil {
		return nil, err
	}
	artifacts, err := engine.Artifacts()
	if err != nil {
		return nil, err
	}
	if err := store.Save(cfg.Index.Path, artifacts); err != nil {
		slog.Warn("persisting index failed", "error", err)
	}
	return engine, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
