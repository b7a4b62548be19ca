package retailers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/scraper"
)

// Shoprite and Checkers run the same storefront platform: search results
// render server-side and every product tile carries its analytics payload
// as JSON in a data-product-ga attribute. One GET plus a parse is enough;
// no browser needed.
var storefrontItems = cascadia.MustCompile("div.item-product")

// storefrontGA is the embedded analytics payload.
type storefrontGA struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// extractStorefrontItem reads one product tile. A missing or malformed
// payload skips the tile; the runner logs and moves on.
func extractStorefrontItem(baseURL string) scraper.ElementExtractFunc {
	return func(_ *goquery.Document, sel *goquery.Selection, retailer string) (*models.Product, error) {
		raw, ok := sel.Attr("data-product-ga")
		if !ok {
			return nil, errors.New("missing data-product-ga attribute")
		}

		var payload storefrontGA
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, err
		}
		if payload.Name == "" {
			return nil, errors.New("product payload has no name")
		}
		price, ok := ParsePrice(payload.Price.String())
		if !ok {
			return nil, errors.New("product payload has no parseable price")
		}

		return &models.Product{
			ID:       payload.ID,
			Name:     payload.Name,
			Price:    price,
			Retailer: retailer,
			Image:    AbsoluteURL(baseURL, sel.Find("img").First().AttrOr("data-original-src", sel.Find("img").First().AttrOr("src", ""))),
			URL:      AbsoluteURL(baseURL, sel.Find("a").First().AttrOr("href", "")),
		}, nil
	}
}

const (
	shopriteBaseURL   = "https://www.shoprite.co.za"
	shopriteSearchURL = shopriteBaseURL + "/search/all?q=%s"
)

type Shoprite struct {
	runner *scraper.HTTPRunner
}

func NewShoprite(runner *scraper.HTTPRunner) *Shoprite {
	return &Shoprite{runner: runner}
}

func (s *Shoprite) Name() string { return "Shoprite" }

func (s *Shoprite) Scrape(ctx context.Context, query string) (models.ScrapeOutcome, error) {
	searchURL := scraper.SearchURL(shopriteSearchURL, query)
	return s.runner.Run(ctx, s.Name(), searchURL, storefrontItems, extractStorefrontItem(shopriteBaseURL)), nil
}
