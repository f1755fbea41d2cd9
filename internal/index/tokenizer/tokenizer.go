// Package tokenizer normalises raw text into terms for the retrieval
// engine. It lower-cases input, keeps maximal runs of ASCII letters, drops
// tokens of length two or less, and removes stopwords. The same Tokenizer
// instance must be used for indexing and for queries: the vector-space
// contract requires both sides to map text to terms identically.
package tokenizer

import (
	"strings"
)

// Tokenizer holds the fixed stopword set. It is safe for concurrent use
// once constructed; the stopword set is never mutated afterwards.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// New creates a Tokenizer with the given stopword set. The map is used as
// provided and must not be modified afterwards.
func New(stopwords map[string]struct{}) *Tokenizer {
	return &Tokenizer{stopwords: stopwords}
}

// Default creates a Tokenizer with the standard English stopword set.
func Default() *Tokenizer {
	return New(DefaultStopwords())
}

// Tokenize breaks text into an ordered sequence of terms. Duplicates are
// preserved; term frequency depends on them. Numbers and punctuation are
// discarded, as are non-ASCII letters.
func (t *Tokenizer) Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) <= 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// DefaultStopwords returns a fresh copy of the standard stopword set:
// common English function words excluded from indexing and queries.
func DefaultStopwords() map[string]struct{} {
	words := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "is", "are", "was", "were", "been", "be",
		"have", "has", "had", "do", "does", "did", "will", "would", "should",
		"could", "may", "might", "must", "shall", "can", "this", "that",
		"these", "those", "i", "you", "he", "she", "it", "we", "they", "them",
		"their", "what", "which", "who", "when", "where", "why", "how", "all",
		"each", "every", "some", "any", "many", "much", "most", "other",
		"another", "such", "no", "not", "only", "own", "same", "so", "than",
		"too", "very", "s", "t", "just", "now", "here", "there", "also", "as",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
