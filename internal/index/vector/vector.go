// Package vector derives per-document TF-IDF weight vectors and their
// Euclidean norms from a built index.
package vector

import (
	"math"

	"github.com/pressindex/pressindex/internal/index"
)

// Set holds every document's TF-IDF vector and norm. A document whose vector
// is empty has norm 0 and can never be retrieved.
type Set struct {
	Vectors map[int]map[string]float64
	Norms   map[int]float64
}

// Compute assembles document vectors in a single pass over the posting
// lists, accumulating tf*idf weights straight into per-document maps.
// docIDs lists every document of the build, so documents with no surviving
// terms still get an empty vector and a zero norm.
func Compute(ix *index.Index, docIDs []int) *Set {
	s := &Set{
		Vectors: make(map[int]map[string]float64, len(docIDs)),
		Norms:   make(map[int]float64, len(docIDs)),
	}
	for _, id := range docIDs {
		s.Vectors[id] = map[string]float64{}
		s.Norms[id] = 0
	}

	sumSquares := make(map[int]float64, len(docIDs))
	for term, postings := range ix.Postings {
		idf := ix.IDF[term]
		for _, p := range postings {
			weight := p.TF * idf
			vec, ok := s.Vectors[p.DocID]
			if !ok {
				vec = map[string]float64{}
				s.Vectors[p.DocID] = vec
			}
			vec[term] = weight
			sumSquares[p.DocID] += weight * weight
		}
	}
	for id, sum := range sumSquares {
		s.Norms[id] = math.Sqrt(sum)
	}
	return s
}

// Norm returns the Euclidean norm of the given document's vector, or 0 when
// the document is unknown.
func (s *Set) Norm(docID int) float64 {
	return s.Norms[docID]
}

// Weight returns the TF-IDF weight of term in the given document, or 0.
func (s *Set) Weight(docID int, term string) float64 {
	return s.Vectors[docID][term]
}
