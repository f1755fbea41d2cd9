// Package search implements the vector-space query engine: cosine-similarity
// scoring of documents against a free-text query, deterministic ranking, and
// snippet extraction.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/pressindex/pressindex/internal/corpus"
	"github.com/pressindex/pressindex/internal/index"
	"github.com/pressindex/pressindex/internal/index/store"
	"github.com/pressindex/pressindex/internal/index/tokenizer"
	"github.com/pressindex/pressindex/internal/index/vector"
	pkgerrors "github.com/pressindex/pressindex/pkg/errors"
)

// State tracks how far an Engine has progressed through the build pipeline.
// Search is only valid in StateReady.
type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateIndexed
	StateVectorized
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateIndexed:
		return "indexed"
	case StateVectorized:
		return "vectorized"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Result is one ranked search hit.
type Result struct {
	ID      int     `json:"id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	Date    string  `json:"date"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
}

// Engine holds one immutable build of the index. Once StateReady is reached
// nothing is mutated again; concurrent Search calls are safe. A rebuild
// produces a fresh Engine published through a Provider.
type Engine struct {
	tok     *tokenizer.Tokenizer
	corpus  *corpus.Corpus
	ix      *index.Index
	vectors *vector.Set
	state   State
	logger  *slog.Logger
}

// NewEngine creates an uninitialised engine sharing the given tokenizer
// between indexing and querying.
func NewEngine(tok *tokenizer.Tokenizer) *Engine {
	return &Engine{
		tok:    tok,
		state:  StateUninitialized,
		logger: slog.Default().With("component", "search-engine"),
	}
}

// State returns the engine's pipeline state.
func (e *Engine) State() State {
	return e.state
}

// Docs returns the document count of the build, 0 before indexing.
func (e *Engine) Docs() int {
	if e.ix == nil {
		return 0
	}
	return e.ix.N
}

// Terms returns the vocabulary size of the build, 0 before indexing.
func (e *Engine) Terms() int {
	if e.ix == nil {
		return 0
	}
	return e.ix.Terms()
}

// LoadCorpus attaches the document collection. Valid once, from
// StateUninitialized.
func (e *Engine) LoadCorpus(c *corpus.Corpus) error {
	if e.state != StateUninitialized {
		return fmt.Errorf("loading corpus in state %s: %w", e.state, pkgerrors.ErrInvalidInput)
	}
	e.corpus = c
	e.state = StateLoaded
	return nil
}

// BuildIndex constructs the inverted index and IDF table from the loaded
// corpus.
func (e *Engine) BuildIndex(ctx context.Context, workers int) error {
	if e.state != StateLoaded {
		return fmt.Errorf("building index in state %s: %w", e.state, pkgerrors.ErrInvalidInput)
	}
	ix, err := index.Build(ctx, e.corpus.All(), e.tok, workers)
	if err != nil {
		return err
	}
	e.ix = ix
	e.state = StateIndexed
	return nil
}

// Vectorize derives the document vectors and norms from the built index.
func (e *Engine) Vectorize() error {
	if e.state != StateIndexed {
		return fmt.Errorf("vectorizing in state %s: %w", e.state, pkgerrors.ErrInvalidInput)
	}
	e.vectors = vector.Compute(e.ix, e.corpus.IDs())
	e.state = StateVectorized
	return nil
}

// Commit seals a vectorized build. After Commit the engine is immutable and
// ready to serve queries.
func (e *Engine) Commit() error {
	if e.state != StateVectorized {
		return fmt.Errorf("committing in state %s: %w", e.state, pkgerrors.ErrInvalidInput)
	}
	e.state = StateReady
	e.logger.Info("engine ready", "documents", e.Docs(), "terms", e.Terms())
	return nil
}

// Build runs the full pipeline: load, index, vectorize, commit.
func (e *Engine) Build(ctx context.Context, c *corpus.Corpus, workers int) error {
	if err := e.LoadCorpus(c); err != nil {
		return err
	}
	if err := e.BuildIndex(ctx, workers); err != nil {
		return err
	}
	if err := e.Vectorize(); err != nil {
		return err
	}
	return e.Commit()
}

// Restore reaches StateReady directly from a loaded corpus plus previously
// persisted artifacts, skipping the build. The corpus is still required for
// snippet extraction. Restore does not verify the artifacts against the
// corpus; callers compare the fingerprint first.
func (e *Engine) Restore(c *corpus.Corpus, a *store.Artifacts) error {
	if e.state != StateUninitialized {
		return fmt.Errorf("restoring in state %s: %w", e.state, pkgerrors.ErrInvalidInput)
	}
	e.corpus = c
	e.ix = &index.Index{Postings: a.Postings, IDF: a.IDF, N: a.N}
	e.vectors = &vector.Set{Vectors: a.Vectors, Norms: a.Norms}
	e.state = StateReady
	e.logger.Info("engine restored from persisted index",
		"documents", e.Docs(),
		"terms", e.Terms(),
	)
	return nil
}

// Artifacts exports the build for persistence, tagged with the corpus
// fingerprint. Only valid once ready.
func (e *Engine) Artifacts() (*store.Artifacts, error) {
	if e.state != StateReady {
		return nil, fmt.Errorf("exporting artifacts in state %s: %w", e.state, pkgerrors.ErrNotReady)
	}
	return &store.Artifacts{
		Postings:    e.ix.Postings,
		IDF:         e.ix.IDF,
		Vectors:     e.vectors.Vectors,
		Norms:       e.vectors.Norms,
		N:           e.ix.N,
		Fingerprint: e.corpus.Fingerprint(),
	}, nil
}

// Search tokenizes the query, scores the candidate documents by cosine
// similarity, and returns up to topK results ranked by score descending with
// ties broken by ascending document ID. A query that yields no terms, or
// only terms outside the vocabulary, returns an empty result set.
func (e *Engine) Search(query string, topK int) ([]Result, error) {
	if e.state != StateReady {
		return nil, pkgerrors.ErrNotReady
	}

	terms := e.tok.Tokenize(query)
	if len(terms) == 0 {
		return []Result{}, nil
	}

	queryVec, queryNorm := e.queryVector(terms)
	if len(queryVec) == 0 || queryNorm == 0 {
		return []Result{}, nil
	}

	// Candidates are exactly the documents sharing at least one query term;
	// everything else scores 0 and is excluded outright.
	dots := make(map[int]float64)
	for term, queryWeight := range queryVec {
		for _, p := range e.ix.Postings[term] {
			dots[p.DocID] += queryWeight * e.vectors.Weight(p.DocID, term)
		}
	}

	type scoredDoc struct {
		id    int
		score float64
	}
	scored := make([]scoredDoc, 0, len(dots))
	for id, dot := range dots {
		docNorm := e.vectors.Norm(id)
		if docNorm == 0 {
			continue
		}
		score := dot / (docNorm * queryNorm)
		if score <= 0 {
			continue
		}
		scored = append(scored, scoredDoc{id: id, score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].id < scored[j].id
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}

	results := make([]Result, 0, len(scored))
	for _, sd := range scored {
		doc, ok := e.corpus.Get(sd.id)
		if !ok {
			continue
		}
		results = append(results, Result{
			ID:      sd.id,
			Score:   sd.score,
			Title:   doc.Title,
			Date:    doc.Date,
			URL:     doc.URL,
			Snippet: extractSnippet(doc.Content, terms),
		})
	}
	return results, nil
}

// queryVector builds the query's TF-IDF vector over vocabulary terms only
// and returns it with its Euclidean norm.
func (e *Engine) queryVector(terms []string) (map[string]float64, float64) {
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	vec := make(map[string]float64, len(counts))
	var sumSquares float64
	total := float64(len(terms))
	for term, count := range counts {
		idf, known := e.ix.IDF[term]
		if !known {
			continue
		}
		weight := (float64(count) / total) * idf
		vec[term] = weight
		sumSquares += weight * weight
	}
	return vec, math.Sqrt(sumSquares)
}
