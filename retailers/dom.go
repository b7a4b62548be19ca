package retailers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/smartshopza/trolley/models"
)

// domItem is the raw shape the in-page extraction scripts return. Price is
// already normalized inside the page (non-numeric characters stripped,
// parsed); an invalid parse comes back as null and drops the record here.
type domItem struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Image string   `json:"image"`
	URL   string   `json:"url"`
}

// evalProducts runs an extraction script in the page context and converts
// the returned raw items into validated product records. Items missing a
// name, a parseable price, or (when requireID is set) an ID never leave
// this function.
func evalProducts(page *rod.Page, js, retailer, baseURL string, requireID bool) ([]models.Product, error) {
	res, err := page.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("in-page extraction: %w", err)
	}

	data, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode extraction payload: %w", err)
	}
	var raw []domItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode extraction payload: %w", err)
	}

	products, dropped := convertDOMItems(raw, retailer, baseURL, requireID)
	if dropped > 0 {
		slog.Debug("dropped incomplete scraped items", "retailer", retailer, "dropped", dropped)
	}
	return products, nil
}

// convertDOMItems validates raw scraped items into product records and
// reports how many were dropped.
func convertDOMItems(raw []domItem, retailer, baseURL string, requireID bool) ([]models.Product, int) {
	products := make([]models.Product, 0, len(raw))
	dropped := 0
	for _, item := range raw {
		if item.Name == "" || (requireID && item.ID == "") {
			dropped++
			continue
		}
		if item.Price == nil || *item.Price < 0 {
			dropped++
			continue
		}
		products = append(products, models.Product{
			ID:       item.ID,
			Name:     item.Name,
			Price:    Round2(*item.Price),
			Retailer: retailer,
			Image:    AbsoluteURL(baseURL, item.Image),
			URL:      AbsoluteURL(baseURL, item.URL),
		})
	}
	return products, dropped
}
