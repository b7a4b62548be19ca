package retailers

import (
	"context"

	"github.com/go-rod/rod"

	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/scraper"
)

const (
	woolworthsBaseURL      = "https://www.woolworths.co.za"
	woolworthsSearchURL    = woolworthsBaseURL + "/cat?Ntt=%s"
	woolworthsItemSelector = "div.product-list__item"
)

const woolworthsExtractJS = `() => {
	const parsePrice = (text) => {
		if (!text) return null;
		const cleaned = text.replace(/[^0-9.]/g, '');
		const value = parseFloat(cleaned);
		return isNaN(value) ? null : value;
	};
	const items = [];
	for (const tile of document.querySelectorAll('div.product-list__item')) {
		const link = tile.querySelector('a.product--view');
		const name = tile.querySelector('.product-card__name, .range--title');
		const price = tile.querySelector('.product__price .price, span.price');
		const image = tile.querySelector('img');
		items.push({
			id: tile.getAttribute('data-product-id') ||
				(link ? (link.getAttribute('href') || '').split('/').filter(Boolean).pop() || '' : ''),
			name: name ? name.textContent.trim() : '',
			price: parsePrice(price ? price.textContent : null),
			image: image ? (image.getAttribute('data-src') || image.getAttribute('src') || '') : '',
			url: link ? link.getAttribute('href') || '' : '',
		});
	}
	return items;
}`

// Woolworths renders its catalogue client-side, so it goes through the
// headless browser. Search results fit one page for grocery queries; no
// pagination loop.
type Woolworths struct {
	runner *scraper.Headless
	cfg    config.ScraperConfig
}

func NewWoolworths(runner *scraper.Headless, cfg config.ScraperConfig) *Woolworths {
	return &Woolworths{runner: runner, cfg: cfg}
}

func (w *Woolworths) Name() string { return "Woolworths" }

func (w *Woolworths) Scrape(ctx context.Context, query string) (models.ScrapeOutcome, error) {
	searchURL := scraper.SearchURL(woolworthsSearchURL, query)
	return w.runner.Run(ctx, w.Name(), searchURL, w.extract), nil
}

func (w *Woolworths) extract(_ context.Context, page *rod.Page) ([]models.Product, error) {
	err := scraper.WaitFor(page, woolworthsItemSelector, scraper.WaitOptions{
		Timeout:     w.cfg.SelectorTimeout,
		MaxRetries:  w.cfg.SelectorRetries,
		Description: "Woolworths product list",
	})
	if err != nil {
		return nil, err
	}
	return evalProducts(page, woolworthsExtractJS, w.Name(), woolworthsBaseURL, true)
}
