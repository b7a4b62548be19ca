package retailers

import (
	"context"
	"log/slog"

	"github.com/smartshopza/trolley/crawler"
	"github.com/smartshopza/trolley/models"
)

const pricecheckResultLimit = 50

// PriceCheck is served from the offline catalogue the sitemap crawler
// maintains, not scraped live: PriceCheck is an aggregator with hundreds
// of thousands of offer pages and fits batch crawling, not interactive
// scraping. Register it with RegisterOffline so basket comparison skips it.
type PriceCheck struct {
	store *crawler.Store
}

func NewPriceCheck(store *crawler.Store) *PriceCheck {
	return &PriceCheck{store: store}
}

func (p *PriceCheck) Name() string { return "PriceCheck" }

func (p *PriceCheck) Scrape(ctx context.Context, query string) (models.ScrapeOutcome, error) {
	products, err := p.store.Search(ctx, p.Name(), query, pricecheckResultLimit)
	if err != nil {
		slog.Error("catalogue search failed", "retailer", p.Name(), "error", err)
		return models.OutcomeFailed("catalogue unavailable: " + err.Error()), nil
	}
	slog.Info("catalogue search complete", "retailer", p.Name(), "products", len(products))
	return models.OutcomeOK(products), nil
}
