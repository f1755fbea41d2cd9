package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pressindex/pressindex/internal/corpus"
	"github.com/pressindex/pressindex/internal/index/store"
	"github.com/pressindex/pressindex/internal/index/tokenizer"
	pkgerrors "github.com/pressindex/pressindex/pkg/errors"
)

type testDoc struct {
	id      int
	title   string
	content string
}

// newTestCorpus materialises documents on disk and loads them through the
// regular corpus loader, so tests exercise the same path production does.
func newTestCorpus(t *testing.T, docs []testDoc) *corpus.Corpus {
	t.Helper()
	dir := t.TempDir()
	articlesDir := filepath.Join(dir, "articles")
	if err := os.MkdirAll(articlesDir, 0755); err != nil {
		t.Fatal(err)
	}
	metadata := "id,title,url,date,filename\n"
	for _, d := range docs {
		filename := fmt.Sprintf("article_%d.txt", d.id)
		metadata += fmt.Sprintf("%d,%s,https://example.org/%d,2026-01-02,%s\n", d.id, d.title, d.id, filename)
		if err := os.WriteFile(filepath.Join(articlesDir, filename), []byte(d.content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	metadataPath := filepath.Join(dir, "metadata.csv")
	if err := os.WriteFile(metadataPath, []byte(metadata), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := corpus.Load(metadataPath, articlesDir)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func readyEngine(t *testing.T, docs []testDoc) *Engine {
	t.Helper()
	e := NewEngine(tokenizer.New(nil))
	if err := e.Build(context.Background(), newTestCorpus(t, docs), 2); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestPipelineStates(t *testing.T) {
	e := NewEngine(tokenizer.New(nil))
	if e.State() != StateUninitialized {
		t.Fatalf("initial state = %s", e.State())
	}

	if err := e.BuildIndex(context.Background(), 1); !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Errorf("BuildIndex before LoadCorpus = %v, want ErrInvalidInput", err)
	}
	if err := e.Vectorize(); !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Errorf("Vectorize before BuildIndex = %v, want ErrInvalidInput", err)
	}
	if _, err := e.Search("alpha", 10); !errors.Is(err, pkgerrors.ErrNotReady) {
		t.Errorf("Search before ready = %v, want ErrNotReady", err)
	}
	if _, err := e.Artifacts(); !errors.Is(err, pkgerrors.ErrNotReady) {
		t.Errorf("Artifacts before ready = %v, want ErrNotReady", err)
	}

	c := newTestCorpus(t, []testDoc{{id: 1, title: "One", content: "alpha beta"}})
	steps := []struct {
		run  func() error
		want State
	}{
		{func() error { return e.LoadCorpus(c) }, StateLoaded},
		{func() error { return e.BuildIndex(context.Background(), 1) }, StateIndexed},
		{func() error { return e.Vectorize() }, StateVectorized},
		{func() error { return e.Commit() }, StateReady},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("pipeline step toward %s failed: %v", step.want, err)
		}
		if e.State() != step.want {
			t.Fatalf("state = %s, want %s", e.State(), step.want)
		}
	}

	if err := e.LoadCorpus(c); !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Errorf("LoadCorpus on ready engine = %v, want ErrInvalidInput", err)
	}
}

func TestSearchRanking(t *testing.T) {
	e := readyEngine(t, []testDoc{
		{id: 1, title: "Alpha heavy", content: "alpha alpha alpha beta"},
		{id: 2, title: "No match", content: "delta epsilon zeta"},
		{id: 3, title: "Alpha light", content: "alpha beta gamma delta"},
	})

	results, err := e.Search("alpha", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (document 2 shares no query term)", len(results))
	}
	if results[0].ID != 1 || results[1].ID != 3 {
		t.Errorf("ranking = [%d %d], want [1 3]", results[0].ID, results[1].ID)
	}
	for _, r := range results {
		if r.Score <= 0 || r.Score > 1+1e-9 {
			t.Errorf("document %d score %v outside (0, 1]", r.ID, r.Score)
		}
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v then %v", results[0].Score, results[1].Score)
	}
	if results[0].Title != "Alpha heavy" {
		t.Errorf("top result title = %q", results[0].Title)
	}
}

func TestSearchTieBreaksOnDocumentID(t *testing.T) {
	e := readyEngine(t, []testDoc{
		{id: 7, title: "Twin B", content: "alpha beta"},
		{id: 4, title: "Twin A", content: "alpha beta"},
		{id: 9, title: "Other", content: "gamma delta"},
	})

	results, err := e.Search("alpha", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if math.Abs(results[0].Score-results[1].Score) > 1e-12 {
		t.Fatalf("twin documents scored differently: %v vs %v", results[0].Score, results[1].Score)
	}
	if results[0].ID != 4 || results[1].ID != 7 {
		t.Errorf("tied results ordered [%d %d], want ascending IDs [4 7]", results[0].ID, results[1].ID)
	}
}

func TestSearchEmptyAndUnknownQueries(t *testing.T) {
	e := readyEngine(t, []testDoc{
		{id: 1, title: "One", content: "alpha beta"},
		{id: 2, title: "Two", content: "gamma delta"},
	})

	for _, query := range []string{"", "  ", "zz 12", "unknownterm"} {
		results, err := e.Search(query, 10)
		if err != nil {
			t.Errorf("Search(%q) failed: %v", query, err)
			continue
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %d results, want 0", query, len(results))
		}
	}
}

func TestSearchUbiquitousTermScoresZero(t *testing.T) {
	// A term in every document has idf 0 and can never produce a hit.
	e := readyEngine(t, []testDoc{
		{id: 1, title: "One", content: "common alpha"},
		{id: 2, title: "Two", content: "common beta"},
	})

	results, err := e.Search("common", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for an idf-zero term, want 0", len(results))
	}
}

func TestSearchTopKTruncation(t *testing.T) {
	e := readyEngine(t, []testDoc{
		{id: 1, title: "One", content: "alpha alpha alpha"},
		{id: 2, title: "Two", content: "alpha alpha beta"},
		{id: 3, title: "Three", content: "alpha beta beta"},
		{id: 4, title: "Four", content: "beta gamma delta"},
	})

	all, err := e.Search("alpha", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("unbounded search returned %d results, want 3", len(all))
	}

	top, err := e.Search("alpha", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 {
		t.Fatalf("topK=2 returned %d results", len(top))
	}
	if top[0] != all[0] || top[1] != all[1] {
		t.Error("truncated results are not a prefix of the full ranking")
	}
}

func TestSearchSnippet(t *testing.T) {
	content := "Markets fell sharply today. The chancellor promised stability. " +
		"Nothing else happened. Markets may recover tomorrow. Markets closed early. " +
		"Markets reopened late."
	e := readyEngine(t, []testDoc{
		{id: 1, title: "Markets", content: content},
		{id: 2, title: "Other", content: "weather report for tomorrow"},
	})

	results, err := e.Search("markets", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	want := "Markets fell sharply today. Markets may recover tomorrow. Markets closed early."
	if results[0].Snippet != want {
		t.Errorf("snippet = %q, want %q", results[0].Snippet, want)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	docs := []testDoc{
		{id: 1, title: "One", content: "alpha beta gamma. alpha again."},
		{id: 2, title: "Two", content: "beta delta. something else entirely."},
		{id: 3, title: "Three", content: "gamma epsilon alpha."},
	}
	c := newTestCorpus(t, docs)

	built := NewEngine(tokenizer.New(nil))
	if err := built.Build(context.Background(), c, 2); err != nil {
		t.Fatal(err)
	}
	artifacts, err := built.Artifacts()
	if err != nil {
		t.Fatal(err)
	}
	if artifacts.Fingerprint != c.Fingerprint() {
		t.Errorf("artifact fingerprint %x does not match corpus %x", artifacts.Fingerprint, c.Fingerprint())
	}

	path := filepath.Join(t.TempDir(), "corpus.pxix")
	if err := store.Save(path, artifacts); err != nil {
		t.Fatal(err)
	}
	loaded, _, err := store.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	restored := NewEngine(tokenizer.New(nil))
	if err := restored.Restore(c, loaded); err != nil {
		t.Fatal(err)
	}
	if restored.State() != StateReady {
		t.Fatalf("restored state = %s, want ready", restored.State())
	}

	for _, query := range []string{"alpha", "beta delta", "gamma", "unknown"} {
		a, err := built.Search(query, 10)
		if err != nil {
			t.Fatal(err)
		}
		b, err := restored.Search(query, 10)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("query %q: built %+v, restored %+v", query, a, b)
		}
	}
}

func TestProvider(t *testing.T) {
	p := NewProvider()
	if _, err := p.Search("alpha", 10); !errors.Is(err, pkgerrors.ErrNotReady) {
		t.Errorf("Search before Publish = %v, want ErrNotReady", err)
	}
	if p.Current() != nil {
		t.Error("Current non-nil before Publish")
	}

	if err := p.Publish(NewEngine(tokenizer.New(nil))); !errors.Is(err, pkgerrors.ErrNotReady) {
		t.Errorf("Publish of unready engine = %v, want ErrNotReady", err)
	}

	e := readyEngine(t, []testDoc{
		{id: 1, title: "One", content: "alpha beta"},
		{id: 2, title: "Two", content: "gamma delta"},
	})
	if err := p.Publish(e); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if p.Current() != e {
		t.Error("Current did not return the published engine")
	}
	results, err := p.Search("alpha", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != 1 {
		t.Errorf("delegated search = %+v", results)
	}
}
