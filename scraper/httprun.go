package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/smartshopza/trolley/models"
)

// ElementExtractFunc converts one matched element into a product record.
// Returning (nil, nil) or an error skips the element; an error is logged
// but never fails the batch.
type ElementExtractFunc func(doc *goquery.Document, sel *goquery.Selection, retailer string) (*models.Product, error)

// HTTPRunner scrapes retailers whose search pages render server-side: one
// plain GET, parse, extract. It shares the outcome contract with the
// headless runner.
type HTTPRunner struct {
	fetcher *fetcher
}

// NewHTTPRunner creates an HTTP scrape runner. proxy, if non-empty, routes
// all outbound requests.
func NewHTTPRunner(proxy string) *HTTPRunner {
	return &HTTPRunner{fetcher: newFetcher(proxy)}
}

// Run fetches searchURL, parses the body, and applies extract to every
// element matched by items.
//
// A 2xx response with zero matches is a successful empty outcome, not an
// error: the retailer simply has no results for the query. A transport
// failure or non-2xx status fails the whole retailer for this query; the
// status lands in the log, not in the outcome message.
func (r *HTTPRunner) Run(ctx context.Context, retailer, searchURL string, items goquery.Matcher, extract ElementExtractFunc) models.ScrapeOutcome {
	log := slog.With("retailer", retailer)
	log.Info("http scrape starting", "url", searchURL)

	res, err := r.fetcher.fetch(ctx, searchURL)
	if err != nil {
		log.Error("fetch failed", "url", searchURL, "error", err)
		return models.OutcomeFailed("network request failed: " + err.Error())
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Error("unexpected response status",
			"url", searchURL,
			"status", res.StatusCode,
			"pageTitle", pageTitle(res.Body),
		)
		return models.OutcomeFailed(retailer + " returned an unexpected response")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		log.Error("response body unparseable", "error", err)
		return models.OutcomeFailed("response body could not be parsed")
	}

	var products []models.Product
	doc.FindMatcher(items).Each(func(i int, sel *goquery.Selection) {
		p, extractErr := extract(doc, sel, retailer)
		if extractErr != nil {
			// A single malformed item is skipped, not fatal.
			log.Debug("skipping malformed item", "index", i, "error", extractErr)
			return
		}
		if p != nil {
			products = append(products, *p)
		}
	})

	log.Info("http scrape complete", "products", len(products), "status", res.StatusCode)
	return models.OutcomeOK(products)
}

// pageTitle extracts the <title> of a response body for failure logs,
// where a "Access Denied" or challenge-page title is the quickest clue.
func pageTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			if tn, _ := tokenizer.TagName(); string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
