// Package retailers holds the per-retailer scraping logic. Every retailer
// implements the same narrow interface regardless of whether it is scraped
// through the shared headless browser, plain HTTP, or the offline crawler
// catalogue; callers never see the strategy.
package retailers

import (
	"context"
	"sync"

	"github.com/smartshopza/trolley/models"
)

// Scraper is the single entry point of one retailer.
type Scraper interface {
	// Name returns the canonical retailer name, e.g. "Pick n Pay".
	Name() string

	// Scrape runs one search against the retailer. Failures caused by the
	// retailer's site are contained in the outcome; a returned error means
	// the runner itself broke.
	Scrape(ctx context.Context, query string) (models.ScrapeOutcome, error)
}

// Registry maps lower-case retailer keys (e.g. "picknpay") to their
// implementations. Registration order is preserved so responses are stable.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	byKey   map[string]Scraper
	offline map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:   make(map[string]Scraper),
		offline: make(map[string]bool),
	}
}

// Register adds an interactive retailer under the given key.
func (r *Registry) Register(key string, s Scraper) {
	r.add(key, s, false)
}

// RegisterOffline adds a retailer backed by the batch crawler catalogue.
// Offline retailers serve searches but are excluded from basket
// comparison, which is an interactive-request operation.
func (r *Registry) RegisterOffline(key string, s Scraper) {
	r.add(key, s, true)
}

func (r *Registry) add(key string, s Scraper, offline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[key]; !exists {
		r.order = append(r.order, key)
	}
	r.byKey[key] = s
	r.offline[key] = offline
}

// Get looks a retailer up by key.
func (r *Registry) Get(key string) (Scraper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byKey[key]
	return s, ok
}

// IsOffline reports whether the key belongs to a crawler-backed retailer.
func (r *Registry) IsOffline(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.offline[key]
}

// Keys returns all registered keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// Select resolves a retailer filter to implementations. An empty filter
// means every registered retailer; unknown keys are skipped.
func (r *Registry) Select(filter []string) []Scraper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.order
	if len(filter) > 0 {
		keys = filter
	}
	selected := make([]Scraper, 0, len(keys))
	for _, key := range keys {
		if s, ok := r.byKey[key]; ok {
			selected = append(selected, s)
		}
	}
	return selected
}

// Interactive returns every retailer that takes part in basket comparison.
func (r *Registry) Interactive() []Scraper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make([]Scraper, 0, len(r.order))
	for _, key := range r.order {
		if !r.offline[key] {
			selected = append(selected, r.byKey[key])
		}
	}
	return selected
}
