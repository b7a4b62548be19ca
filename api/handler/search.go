package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smartshopza/trolley/aggregate"
	"github.com/smartshopza/trolley/cache"
	"github.com/smartshopza/trolley/models"
)

// Search returns a handler for GET /api/v1/search.
//
// Query parameters:
//
//	q          required search term
//	retailers  optional comma-separated registry keys, default all
//	format     "flat" switches to the legacy flat response shape
//
// Per-retailer failures are reported inside the 200 response; the request
// only fails as a whole on invalid input.
func Search(agg *aggregate.Aggregator, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			respondError(c, models.NewScrapeError(
				models.ErrCodeInvalidInput,
				"missing required query parameter: q",
				nil,
			))
			return
		}

		var filter []string
		if raw := c.Query("retailers"); raw != "" {
			for _, key := range strings.Split(raw, ",") {
				if key = strings.TrimSpace(key); key != "" {
					filter = append(filter, strings.ToLower(key))
				}
			}
		}

		cacheKey := cache.Key(query, filter)
		resp, hit := cc.Get(cacheKey)
		if !hit {
			resp = agg.Search(c.Request.Context(), query, filter)
			cc.Set(cacheKey, resp)
		}

		if c.Query("format") == "flat" {
			c.JSON(http.StatusOK, agg.Flatten(resp))
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
