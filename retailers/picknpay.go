package retailers

import (
	"context"

	"github.com/go-rod/rod"

	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/scraper"
)

const (
	picknpayBaseURL      = "https://www.pnp.co.za"
	picknpaySearchURL    = picknpayBaseURL + "/search/%s"
	picknpayItemSelector = "div.product-grid-item"
)

const picknpayExtractJS = `() => {
	const parsePrice = (text) => {
		if (!text) return null;
		const cleaned = text.replace(/[^0-9.]/g, '');
		const value = parseFloat(cleaned);
		return isNaN(value) ? null : value;
	};
	const items = [];
	for (const tile of document.querySelectorAll('div.product-grid-item')) {
		const link = tile.querySelector('a[href*="/p/"]');
		const name = tile.querySelector('.product-grid-item__info-container h3, .item-name');
		const price = tile.querySelector('.product-grid-item__price, .item-price');
		const image = tile.querySelector('img');
		const href = link ? link.getAttribute('href') || '' : '';
		const idMatch = href.match(/\/p\/([^/?#]+)/);
		items.push({
			id: idMatch ? idMatch[1] : '',
			name: name ? name.textContent.trim() : '',
			price: parsePrice(price ? price.textContent : null),
			image: image ? (image.getAttribute('data-src') || image.getAttribute('src') || '') : '',
			url: href,
		});
	}
	return items;
}`

// PicknPay is an Angular storefront, headless-only. Product IDs come off
// the product link because the tile markup does not carry them.
type PicknPay struct {
	runner *scraper.Headless
	cfg    config.ScraperConfig
}

func NewPicknPay(runner *scraper.Headless, cfg config.ScraperConfig) *PicknPay {
	return &PicknPay{runner: runner, cfg: cfg}
}

func (p *PicknPay) Name() string { return "Pick n Pay" }

func (p *PicknPay) Scrape(ctx context.Context, query string) (models.ScrapeOutcome, error) {
	searchURL := scraper.SearchURL(picknpaySearchURL, query)
	return p.runner.Run(ctx, p.Name(), searchURL, p.extract), nil
}

func (p *PicknPay) extract(_ context.Context, page *rod.Page) ([]models.Product, error) {
	err := scraper.WaitFor(page, picknpayItemSelector, scraper.WaitOptions{
		Timeout:        p.cfg.SelectorTimeout,
		MaxRetries:     p.cfg.SelectorRetries,
		RequireVisible: true,
		Description:    "Pick n Pay product grid",
	})
	if err != nil {
		return nil, err
	}
	return evalProducts(page, picknpayExtractJS, p.Name(), picknpayBaseURL, true)
}
