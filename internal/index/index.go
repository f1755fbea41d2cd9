// Package index builds the inverted index and IDF table from a loaded
// corpus. A build is a single batch pass; the result is read-only and a
// rebuild always produces a fresh Index.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pressindex/pressindex/internal/corpus"
	"github.com/pressindex/pressindex/internal/index/tokenizer"
	pkgerrors "github.com/pressindex/pressindex/pkg/errors"
)

// Posting records one term occurrence profile: the document and the term's
// length-normalised frequency within it, in [0,1].
type Posting struct {
	DocID int     `json:"d"`
	TF    float64 `json:"f"`
}

// Index is the product of one build pass. Posting-list order is the document
// processing order and carries no meaning; ranking never depends on it.
type Index struct {
	Postings map[string][]Posting
	IDF      map[string]float64
	N        int
}

// Terms returns the vocabulary size.
func (ix *Index) Terms() int {
	return len(ix.Postings)
}

// DF returns the document frequency of a term.
func (ix *Index) DF(term string) int {
	return len(ix.Postings[term])
}

// Build tokenises and counts every document with up to workers goroutines,
// then merges per-document term frequencies into posting lists with a
// sequential reduce in corpus order, and finally computes idf(t) = ln(N/df).
// It fails with ErrEmptyCorpus when there are no documents.
func Build(ctx context.Context, docs []corpus.Document, tok *tokenizer.Tokenizer, workers int) (*Index, error) {
	if len(docs) == 0 {
		return nil, pkgerrors.ErrEmptyCorpus
	}
	if workers < 1 {
		workers = 1
	}
	start := time.Now()

	// Per-document term frequencies, independent across documents.
	freqs := make([]map[string]float64, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			freqs[i] = termFrequencies(tok.Tokenize(doc.Content))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tokenizing corpus: %w", err)
	}

	ix := &Index{
		Postings: make(map[string][]Posting),
		IDF:      make(map[string]float64),
		N:        len(docs),
	}
	for i, doc := range docs {
		for term, tf := range freqs[i] {
			ix.Postings[term] = append(ix.Postings[term], Posting{DocID: doc.ID, TF: tf})
		}
	}
	for term, postings := range ix.Postings {
		ix.IDF[term] = math.Log(float64(ix.N) / float64(len(postings)))
	}

	slog.Default().With("component", "index-builder").Info("index built",
		"documents", ix.N,
		"terms", ix.Terms(),
		"duration", time.Since(start),
	)
	return ix, nil
}

// termFrequencies counts terms and normalises each count by the token total.
// A document with no surviving tokens yields an empty map.
func termFrequencies(terms []string) map[string]float64 {
	if len(terms) == 0 {
		return map[string]float64{}
	}
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	total := float64(len(terms))
	freqs := make(map[string]float64, len(counts))
	for term, count := range counts {
		freqs[term] = float64(count) / total
	}
	return freqs
}
