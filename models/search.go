package models

import "time"

// RetailerError names a retailer whose scrape failed during a search,
// together with the failure detail. Per-retailer failures never escalate
// to request-level errors.
type RetailerError struct {
	Retailer string `json:"retailer"`
	Message  string `json:"message"`
}

// SearchResponse is the grouped search result shape.
type SearchResponse struct {
	Query         string               `json:"query"`
	Results       map[string][]Product `json:"results"`
	TotalProducts int                  `json:"totalProducts"`
	Timestamp     time.Time            `json:"timestamp"`
	Errors        []RetailerError      `json:"errors,omitempty"`
}

// FlatSearchResponse is the legacy flat search shape: every product carries
// its retailer field and all retailers share one list.
type FlatSearchResponse struct {
	Results []Product       `json:"results"`
	Errors  []RetailerError `json:"errors,omitempty"`
}

// HealthResponse is the response shape of GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Browser   string `json:"browser"`
	Retailers int    `json:"retailers"`
	Version   string `json:"version"`
}

// ErrorResponse is the request-level error envelope.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details *ErrorDetail `json:"details,omitempty"`
}
