package models

// Product is the normalized record every retailer extractor produces.
//
// A Product only ever exists fully valid: Name and Retailer are non-empty,
// Price is a non-negative amount already rounded to 2 decimals, and ID is
// present for retailers whose extractor requires it. Scraped items that
// cannot satisfy those rules are dropped inside the extractor and never
// surface as partially-populated records.
type Product struct {
	// ID is the retailer-assigned product identifier. Required for
	// browser-scraped retailers, optional for the rest.
	ID string `json:"id,omitempty"`

	// Name is the product display name.
	Name string `json:"name"`

	// Price is the current price in ZAR, normalized to 2 decimals.
	Price float64 `json:"price"`

	// Retailer is the canonical retailer name (e.g. "Checkers"). Always
	// set by the extractor, never read off the page.
	Retailer string `json:"retailer"`

	// Image is an absolute image URL when the source supplies one.
	Image string `json:"image,omitempty"`

	// URL is the product page URL when the source supplies one.
	URL string `json:"url,omitempty"`
}

// ScrapeOutcome is the uniform contract every scrape runner returns,
// regardless of strategy. It is created once per scrape invocation and
// never mutated or merged internally; merging is the aggregation layer's
// job.
type ScrapeOutcome struct {
	// Results holds products in page/DOM arrival order. May be empty.
	Results []Product `json:"results"`

	// Failed reports whether the scrape failed as a whole.
	Failed bool `json:"failed"`

	// Message carries human-readable failure detail, set iff Failed.
	Message string `json:"message,omitempty"`
}

// OutcomeOK builds a successful outcome. A nil slice is normalized to an
// empty one so callers can range and marshal without nil checks.
func OutcomeOK(results []Product) ScrapeOutcome {
	if results == nil {
		results = []Product{}
	}
	return ScrapeOutcome{Results: results}
}

// OutcomeFailed builds a failed outcome with the given detail message.
func OutcomeFailed(message string) ScrapeOutcome {
	return ScrapeOutcome{Results: []Product{}, Failed: true, Message: message}
}
