package models

// BasketRequest is the body of POST /api/v1/basket/compare.
type BasketRequest struct {
	Items []string `json:"items"`
}

// FoundItem records one basket item resolved at one retailer. Price is the
// first scraped result's price, taken as authoritative for that item; no
// cross-result comparison happens within a retailer.
type FoundItem struct {
	ItemQuery string   `json:"itemQuery"`
	Price     float64  `json:"price"`
	Product   *Product `json:"productDetail,omitempty"`
}

// BasketItemError records a basket item that errored at one retailer.
type BasketItemError struct {
	ItemQuery string `json:"itemQuery"`
	Message   string `json:"message"`
}

// BasketResult is the per-retailer accumulator of a basket comparison.
// It is mutated while settled task outcomes are folded in and immutable
// once returned. TotalPrice is rounded to 2 decimals exactly once, after
// every task has been folded, so rounding error never compounds across
// additions.
type BasketResult struct {
	TotalPrice      float64           `json:"totalPrice"`
	FoundItems      []FoundItem       `json:"foundItems"`
	MissingItems    []string          `json:"missingItems"`
	PotentialErrors []BasketItemError `json:"potentialErrors"`
	ItemCount       int               `json:"itemCount"`
}

// NewBasketResult returns an empty accumulator with non-nil slices so the
// JSON shape is stable even when nothing was found.
func NewBasketResult() *BasketResult {
	return &BasketResult{
		FoundItems:      []FoundItem{},
		MissingItems:    []string{},
		PotentialErrors: []BasketItemError{},
	}
}
