// Package benchmark contains Go benchmarks for the index build pipeline,
// vectorization, and the query engine, measuring throughput and allocation
// behaviour over synthetic corpora.
package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/pressindex/pressindex/internal/corpus"
	"github.com/pressindex/pressindex/internal/index"
	"github.com/pressindex/pressindex/internal/index/tokenizer"
	"github.com/pressindex/pressindex/internal/index/vector"
)

// vocabulary feeds the synthetic article generator. Real articles mix a
// heavy head of common words with a long tail, which a uniform draw over a
// fixed list approximates well enough for allocation profiles.
var vocabulary = []string{
	"government", "economy", "inflation", "climate", "technology", "research",
	"election", "minister", "market", "energy", "hospital", "transport",
	"education", "housing", "defence", "science", "vaccine", "satellite",
	"investment", "regulator", "strike", "border", "currency", "drought",
	"earnings", "broadband", "renewable", "immigration", "parliament", "verdict",
}

func syntheticDocs(n, wordsPerDoc int) []corpus.Document {
	rng := rand.New(rand.NewSource(42))
	docs := make([]corpus.Document, n)
	for i := range docs {
		words := make([]string, wordsPerDoc)
		for j := range words {
			words[j] = vocabulary[rng.Intn(len(vocabulary))]
		}
		docs[i] = corpus.Document{
			ID:      i + 1,
			Title:   fmt.Sprintf("Synthetic article %d", i+1),
			Content: strings.Join(words, " "),
		}
	}
	return docs
}

func BenchmarkIndexBuild(b *testing.B) {
	tok := tokenizer.Default()
	for _, size := range []int{100, 1000, 5000} {
		docs := syntheticDocs(size, 200)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				ix, err := index.Build(context.Background(), docs, tok, 4)
				if err != nil {
					b.Fatal(err)
				}
				_ = ix
			}
		})
	}
}

func BenchmarkIndexBuildWorkers(b *testing.B) {
	tok := tokenizer.Default()
	docs := syntheticDocs(1000, 200)
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				ix, err := index.Build(context.Background(), docs, tok, workers)
				if err != nil {
					b.Fatal(err)
				}
				_ = ix
			}
		})
	}
}

func BenchmarkVectorize(b *testing.B) {
	tok := tokenizer.Default()
	docs := syntheticDocs(1000, 200)
	ix, err := index.Build(context.Background(), docs, tok, 4)
	if err != nil {
		b.Fatal(err)
	}
	ids := make([]int, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := vector.Compute(ix, ids)
		_ = s
	}
}
