package services

import (
	"context"
	"sync"
	"time"

	"autofinder/models"
	"autofinder/scraper"
	"autofinder/utils"
)

// Aggregator fans a query out to the eligible source adapters, runs them on a
// bounded worker pool under one wall-clock deadline, and merges whatever they
// return in completion order. A failing adapter is logged and excluded; it
// never aborts its siblings. On deadline the merge so far is returned.
type Aggregator struct {
	registry       *scraper.Registry
	logger         *utils.Logger
	maxConcurrency int
	timeout        time.Duration
}

// NewAggregator creates an Aggregator over the given adapter registry.
func NewAggregator(registry *scraper.Registry, logger *utils.Logger, maxConcurrency int, timeout time.Duration) *Aggregator {
	return &Aggregator{
		registry:       registry,
		logger:         logger,
		maxConcurrency: maxConcurrency,
		timeout:        timeout,
	}
}

// Search runs one aggregation round and returns the merged listings.
func (a *Aggregator) Search(ctx context.Context, q models.Query) []*models.Listing {
	adapters := a.registry.Eligible(q)
	if len(adapters) == 0 {
		a.logger.Warn("[aggregator] No eligible sources for query (fuentes=%s, term=%q)",
			q.Sources, q.Term())
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.logger.Info("[aggregator] Fanning out to %d sources (term=%q)", len(adapters), q.Term())

	var mu sync.Mutex
	var merged []*models.Listing

	pool := utils.NewWorkerPool(a.maxConcurrency, 0)
	for _, adapter := range adapters {
		adapter := adapter
		pool.Submit(func() {
			start := time.Now()
			listings, err := adapter.Search(ctx, q)
			if err != nil {
				a.logger.Error("[aggregator] Source %s failed: %v", adapter.Source(), err)
				return
			}

			mu.Lock()
			merged = append(merged, listings...)
			mu.Unlock()

			a.logger.Info("[aggregator] Source %s returned %d listings in %v",
				adapter.Source(), len(listings), time.Since(start).Round(time.Millisecond))
		})
	}

	// An adapter that outlives the deadline is excluded from the result but
	// keeps running until it notices the context; it owns its own cleanup.
	if !pool.WaitContext(ctx) {
		a.logger.Warn("[aggregator] Deadline reached after %v — returning partial results", a.timeout)
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]*models.Listing, len(merged))
	copy(out, merged)
	return out
}
