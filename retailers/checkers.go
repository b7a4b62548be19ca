package retailers

import (
	"context"

	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/scraper"
)

const (
	checkersBaseURL   = "https://www.checkers.co.za"
	checkersSearchURL = checkersBaseURL + "/search/all?q=%s"
)

// Checkers shares the Shoprite storefront platform, so the extraction is
// the shared data-product-ga reader against the Checkers domain.
type Checkers struct {
	runner *scraper.HTTPRunner
}

func NewCheckers(runner *scraper.HTTPRunner) *Checkers {
	return &Checkers{runner: runner}
}

func (c *Checkers) Name() string { return "Checkers" }

func (c *Checkers) Scrape(ctx context.Context, query string) (models.ScrapeOutcome, error) {
	searchURL := scraper.SearchURL(checkersSearchURL, query)
	return c.runner.Run(ctx, c.Name(), searchURL, storefrontItems, extractStorefrontItem(checkersBaseURL)), nil
}
