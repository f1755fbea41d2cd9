package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Index.Path != "data/corpus.pxix" {
		t.Errorf("Index.Path = %q", cfg.Index.Path)
	}
	if cfg.Index.BuildWorkers != 4 {
		t.Errorf("Index.BuildWorkers = %d, want 4", cfg.Index.BuildWorkers)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxResults != 100 {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if cfg.Postgres.Enabled() {
		t.Error("Postgres enabled by default")
	}
	if cfg.Kafka.Enabled() {
		t.Error("Kafka enabled by default")
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadFile(t *testing.T) {
	yaml := `
server:
  port: 9999
search:
  defaultLimit: 25
redis:
  addr: localhost:6379
crawler:
  sections:
    - https://example.org/news
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 25 {
		t.Errorf("Search.DefaultLimit = %d, want 25", cfg.Search.DefaultLimit)
	}
	if !cfg.Redis.Enabled() {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v, want default 60s", cfg.Redis.CacheTTL)
	}
	if len(cfg.Crawler.Sections) != 1 {
		t.Errorf("Crawler.Sections = %v", cfg.Crawler.Sections)
	}
	// Untouched values keep their defaults.
	if cfg.Search.MaxResults != 100 {
		t.Errorf("Search.MaxResults = %d, want default 100", cfg.Search.MaxResults)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load succeeded with a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PX_SERVER_PORT", "7777")
	t.Setenv("PX_INDEX_PATH", "/var/lib/pressindex/corpus.pxix")
	t.Setenv("PX_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PX_POSTGRES_HOST", "db.internal")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Index.Path != "/var/lib/pressindex/corpus.pxix" {
		t.Errorf("Index.Path = %q", cfg.Index.Path)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if !cfg.Postgres.Enabled() {
		t.Error("Postgres not enabled by PX_POSTGRES_HOST")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "localhost", Port: 5432, User: "px", Password: "secret",
		Database: "pressindex", SSLMode: "disable",
	}
	dsn := p.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "user=px", "dbname=pressindex", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %q", dsn, part)
		}
	}
}
