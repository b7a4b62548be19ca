package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smartshopza/trolley/models"
)

// entry holds a cached search response with its creation timestamp.
type entry struct {
	response  models.SearchResponse
	createdAt time.Time
}

// Cache is a simple in-memory cache for search responses.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
}

// New creates a new Cache holding at most maxEntries responses for ttl.
// A background goroutine evicts expired entries every minute.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}

	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the query and the retailer filter. The
// filter is normalized (lower-cased, sorted) so equivalent requests share
// an entry regardless of parameter order.
func Key(query string, filter []string) string {
	normalized := make([]string, len(filter))
	for i, f := range filter {
		normalized[i] = strings.ToLower(strings.TrimSpace(f))
	}
	sort.Strings(normalized)

	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	for _, f := range normalized {
		h.Write([]byte("|"))
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached response if it exists and is younger than the TTL.
// Returns the response and whether it was a cache hit.
func (c *Cache) Get(key string) (models.SearchResponse, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.ttl {
		return models.SearchResponse{}, false
	}
	return e.response, true
}

// Set stores a response in the cache. Responses with no products and no
// errors are stored too; an empty answer is still an answer. If the cache
// is at capacity, a random entry is evicted to make room.
func (c *Cache) Set(key string, resp models.SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		response:  resp,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts expired entries every minute.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.ttl)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
