package retailers

import (
	"context"

	"github.com/go-rod/rod"

	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/scraper"
)

const (
	makroBaseURL      = "https://www.makro.co.za"
	makroSearchURL    = makroBaseURL + "/search/?text=%s"
	makroItemSelector = "div.product-card"
	makroMaxPages     = 10
)

// makroExtractJS pulls the product tiles out of the current DOM snapshot.
// Every optional field is null-checked; the price string is stripped to
// digits and the decimal point before parsing, with failures surfacing as
// null so the host side drops the record.
const makroExtractJS = `() => {
	const parsePrice = (text) => {
		if (!text) return null;
		const cleaned = text.replace(/[^0-9.]/g, '');
		const value = parseFloat(cleaned);
		return isNaN(value) ? null : value;
	};
	const items = [];
	for (const card of document.querySelectorAll('div.product-card')) {
		const link = card.querySelector('a.product-card__link');
		const name = card.querySelector('.product-card__name');
		const price = card.querySelector('.product-card__price');
		const image = card.querySelector('img.product-card__image');
		items.push({
			id: card.getAttribute('data-product-id') || '',
			name: name ? name.textContent.trim() : '',
			price: parsePrice(price ? price.textContent : null),
			image: image ? (image.getAttribute('data-src') || image.getAttribute('src') || '') : '',
			url: link ? link.getAttribute('href') || '' : '',
		});
	}
	return items;
}`

// Makro is scraped through the headless browser: its search results render
// client-side and paginate with a "Next" control.
type Makro struct {
	runner *scraper.Headless
	cfg    config.ScraperConfig
}

func NewMakro(runner *scraper.Headless, cfg config.ScraperConfig) *Makro {
	return &Makro{runner: runner, cfg: cfg}
}

func (m *Makro) Name() string { return "Makro" }

func (m *Makro) Scrape(ctx context.Context, query string) (models.ScrapeOutcome, error) {
	searchURL := scraper.SearchURL(makroSearchURL, query)
	return m.runner.Run(ctx, m.Name(), searchURL, m.extract), nil
}

// extract walks the paginated result grid, accumulating tiles across pages
// in arrival order. The item selector missing on page 1 is a hard error;
// missing on a later page is the normal end of pagination.
func (m *Makro) extract(ctx context.Context, page *rod.Page) ([]models.Product, error) {
	return scraper.Paginate(ctx, page, scraper.PaginateOptions{
		ItemSelector: makroItemSelector,
		Wait: scraper.WaitOptions{
			Timeout:        m.cfg.SelectorTimeout,
			MaxRetries:     m.cfg.SelectorRetries,
			RequireVisible: true,
			Description:    "Makro product grid",
		},
		TransitionTimeout: 2 * m.cfg.SelectorTimeout,
		MaxPages:          makroMaxPages,
	}, func() ([]models.Product, error) {
		return evalProducts(page, makroExtractJS, m.Name(), makroBaseURL, true)
	})
}
