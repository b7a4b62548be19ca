// Package aggregate fans scrape requests out across retailers and merges
// the settled outcomes. One slow or broken retailer never sinks a request:
// every task runs to completion and partial results are always preferred
// over an empty error.
package aggregate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/retailers"
)

// Aggregator dispatches searches and basket comparisons across the
// retailer registry.
type Aggregator struct {
	registry *retailers.Registry
	cfg      config.ScraperConfig
	basket   config.BasketConfig
	logger   *slog.Logger
}

// New creates an Aggregator over the given registry.
func New(registry *retailers.Registry, cfg config.ScraperConfig, basket config.BasketConfig, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{registry: registry, cfg: cfg, basket: basket, logger: logger}
}

type searchResult struct {
	retailer string
	outcome  models.ScrapeOutcome
}

// Search runs one query against every selected retailer concurrently and
// merges the results grouped by retailer. The filter is a list of registry
// keys; empty means all. Retailers that fail are reported in the response
// Errors list, never as a request-level error.
func (a *Aggregator) Search(ctx context.Context, query string, filter []string) models.SearchResponse {
	selected := a.registry.Select(filter)

	if a.cfg.SearchDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.SearchDeadline)
		defer cancel()
	}

	results := make([]searchResult, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range selected {
		g.Go(func() error {
			start := time.Now()
			results[i] = searchResult{retailer: s.Name(), outcome: a.scrapeOne(gctx, s, query)}
			a.logger.Info("retailer search finished",
				"retailer", s.Name(),
				"query", query,
				"failed", results[i].outcome.Failed,
				"products", len(results[i].outcome.Results),
				"duration", time.Since(start))
			return nil
		})
	}
	// Tasks never return errors; Wait is a barrier only.
	_ = g.Wait()

	resp := models.SearchResponse{
		Query:     query,
		Results:   make(map[string][]models.Product, len(selected)),
		Timestamp: time.Now().UTC(),
	}
	for _, r := range results {
		if r.outcome.Failed {
			resp.Errors = append(resp.Errors, models.RetailerError{Retailer: r.retailer, Message: r.outcome.Message})
			continue
		}
		resp.Results[r.retailer] = r.outcome.Results
		resp.TotalProducts += len(r.outcome.Results)
	}
	return resp
}

// Flatten converts a grouped search response into the legacy flat shape.
// Retailer groups are emitted in registration order so the flat list is
// stable across requests.
func (a *Aggregator) Flatten(resp models.SearchResponse) models.FlatSearchResponse {
	flat := models.FlatSearchResponse{Results: []models.Product{}, Errors: resp.Errors}
	for _, key := range a.registry.Keys() {
		s, ok := a.registry.Get(key)
		if !ok {
			continue
		}
		flat.Results = append(flat.Results, resp.Results[s.Name()]...)
	}
	return flat
}

// scrapeOne contains one retailer scrape. A runner-level error is folded
// into a failed outcome here so callers only ever see outcomes.
func (a *Aggregator) scrapeOne(ctx context.Context, s retailers.Scraper, query string) models.ScrapeOutcome {
	outcome, err := s.Scrape(ctx, query)
	if err != nil {
		a.logger.Error("scrape runner error", "retailer", s.Name(), "error", err)
		return models.OutcomeFailed(err.Error())
	}
	return outcome
}
