package search

import (
	"sync/atomic"

	pkgerrors "github.com/pressindex/pressindex/pkg/errors"
)

// Provider publishes the current ready engine behind a single atomic
// reference. A rebuild constructs a fresh Engine and swaps it in whole, so
// concurrent readers never observe a partially built index.
type Provider struct {
	current atomic.Pointer[Engine]
}

// NewProvider creates a Provider with no engine published yet.
func NewProvider() *Provider {
	return &Provider{}
}

// Publish atomically replaces the served engine. The engine must be ready.
func (p *Provider) Publish(e *Engine) error {
	if e.State() != StateReady {
		return pkgerrors.ErrNotReady
	}
	p.current.Store(e)
	return nil
}

// Current returns the published engine, or nil before the first Publish.
func (p *Provider) Current() *Engine {
	return p.current.Load()
}

// Search delegates to the published engine, failing with ErrNotReady before
// the first Publish.
func (p *Provider) Search(query string, topK int) ([]Result, error) {
	e := p.current.Load()
	if e == nil {
		return nil, pkgerrors.ErrNotReady
	}
	return e.Search(query, topK)
}
