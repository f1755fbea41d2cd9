package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pressindex/pressindex/internal/corpus"
)

// Match is one extracted value with its surrounding context window.
type Match struct {
	Value   string `json:"value"`
	Context string `json:"context,omitempty"`
}

// DocumentExtraction holds every field extracted from one document.
type DocumentExtraction struct {
	DocID  int                `json:"doc_id"`
	Title  string             `json:"title"`
	Fields map[string][]Match `json:"fields"`
}

// Report is the result of running the extractor over a corpus. Documents
// appear in corpus order; Counts totals matches per pattern name.
type Report struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Documents   []DocumentExtraction `json:"documents"`
	Counts      map[string]int       `json:"counts"`
}

// Extractor applies a fixed pattern table to documents.
type Extractor struct {
	patterns      []Pattern
	contextWindow int
	logger        *slog.Logger
}

// New creates an Extractor. contextWindow is the number of characters of
// context captured on each side of a match.
func New(patterns []Pattern, contextWindow int) *Extractor {
	return &Extractor{
		patterns:      patterns,
		contextWindow: contextWindow,
		logger:        slog.Default().With("component", "extractor"),
	}
}

// ExtractDocument applies every pattern to one document. Matches are
// deduplicated preserving first-occurrence order.
func (x *Extractor) ExtractDocument(doc corpus.Document) DocumentExtraction {
	fields := make(map[string][]Match, len(x.patterns))
	for _, p := range x.patterns {
		raw := p.re.FindAllString(doc.Content, -1)
		if len(raw) == 0 {
			continue
		}
		seen := make(map[string]struct{}, len(raw))
		matches := make([]Match, 0, len(raw))
		for _, value := range raw {
			if p.clean != nil {
				value = p.clean(value)
			}
			if len(value) <= 2 {
				continue
			}
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			matches = append(matches, Match{
				Value:   value,
				Context: x.contextFor(doc.Content, value),
			})
		}
		if len(matches) > 0 {
			fields[p.Name] = matches
		}
	}
	return DocumentExtraction{
		DocID:  doc.ID,
		Title:  doc.Title,
		Fields: fields,
	}
}

// Run extracts from every document with up to workers goroutines and
// assembles the report in corpus order.
func (x *Extractor) Run(ctx context.Context, docs []corpus.Document, workers int) (*Report, error) {
	if workers < 1 {
		workers = 1
	}
	extractions := make([]DocumentExtraction, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			extractions[i] = x.ExtractDocument(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting corpus: %w", err)
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Documents:   extractions,
		Counts:      make(map[string]int),
	}
	for _, de := range extractions {
		for field, matches := range de.Fields {
			report.Counts[field] += len(matches)
		}
	}
	x.logger.Info("extraction complete",
		"documents", len(docs),
		"fields", len(report.Counts),
	)
	return report, nil
}

// contextFor returns up to contextWindow characters on each side of the
// first case-insensitive occurrence of value, with newlines flattened.
func (x *Extractor) contextFor(content, value string) string {
	pos := strings.Index(strings.ToLower(content), strings.ToLower(value))
	if pos < 0 {
		return ""
	}
	start := pos - x.contextWindow
	if start < 0 {
		start = 0
	}
	end := pos + len(value) + x.contextWindow
	if end > len(content) {
		end = len(content)
	}
	return strings.ReplaceAll(content[start:end], "\n", " ")
}
