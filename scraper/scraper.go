// Package scraper defines the source adapter contract and the registry the
// aggregator fans out over.
package scraper

import (
	"context"

	"autofinder/models"
)

// Adapter is one external listing source. Implementations own their transport
// (headless browser or plain HTTP), their selectors and their retry policy;
// the only promise they make is that every returned listing has the four
// mandatory fields set.
type Adapter interface {
	// Source returns the tag stamped on every listing this adapter emits.
	Source() models.Source
	// CanSearch reports whether the query carries the terms this source
	// needs (some sources take a free-text term, others need both brand
	// and model).
	CanSearch(q models.Query) bool
	// Search runs one search. It must honor ctx cancellation and release
	// its own resources on the way out.
	Search(ctx context.Context, q models.Query) ([]*models.Listing, error)
}

// Registry holds the configured adapters in registration order.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a Registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Eligible returns the adapters selected by the query's source set that can
// also serve its search terms.
func (r *Registry) Eligible(q models.Query) []Adapter {
	var out []Adapter
	for _, a := range r.adapters {
		if q.Wants(a.Source()) && a.CanSearch(q) {
			out = append(out, a)
		}
	}
	return out
}
