// Package corpus loads the article corpus: a CSV metadata table plus one
// plain-text file per document. The loader skips unusable rows and fails
// only when the table itself is unreadable or nothing survives.
package corpus

import (
	"fmt"
	"hash/fnv"
)

// Document is one article of the corpus. Immutable once loaded.
type Document struct {
	ID       int
	Title    string
	URL      string
	Date     string
	Filename string
	Content  string
}

// Stats counts the rows the loader had to skip.
type Stats struct {
	MalformedRows    int
	MissingDocuments int
}

// Corpus is an ordered, read-only collection of documents keyed by ID.
// Iteration order is the metadata row order.
type Corpus struct {
	docs  map[int]Document
	order []int
	stats Stats
}

// Len returns the number of loaded documents.
func (c *Corpus) Len() int {
	return len(c.order)
}

// Get returns the document with the given ID.
func (c *Corpus) Get(id int) (Document, bool) {
	doc, ok := c.docs[id]
	return doc, ok
}

// IDs returns the document IDs in metadata row order.
func (c *Corpus) IDs() []int {
	ids := make([]int, len(c.order))
	copy(ids, c.order)
	return ids
}

// All returns the documents in metadata row order.
func (c *Corpus) All() []Document {
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.docs[id])
	}
	return docs
}

// Stats returns the skip counters recorded during loading.
func (c *Corpus) Stats() Stats {
	return c.stats
}

// Fingerprint returns a stable hash over the loaded documents (ID, filename,
// content length per row, in row order). Callers compare it against the
// fingerprint recorded in a persisted index to detect staleness.
func (c *Corpus) Fingerprint() uint64 {
	h := fnv.New64a()
	for _, id := range c.order {
		doc := c.docs[id]
		fmt.Fprintf(h, "%d:%s:%d\n", doc.ID, doc.Filename, len(doc.Content))
	}
	return h.Sum64()
}

func (c *Corpus) add(doc Document) {
	if _, exists := c.docs[doc.ID]; !exists {
		c.order = append(c.order, doc.ID)
	}
	c.docs[doc.ID] = doc
}
