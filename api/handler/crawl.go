package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smartshopza/trolley/crawler"
	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/retailers"
)

// CrawlRequest is the body of POST /api/v1/crawl.
type CrawlRequest struct {
	Retailer string `json:"retailer"`
	MaxURLs  int    `json:"maxUrls"`
}

const defaultCrawlMaxURLs = 500

// PostCrawl returns a handler that launches a background catalogue crawl
// for one offline retailer. The crawl outlives the request; 202 means it
// started, completion is reported through logs and the webhook.
func PostCrawl(bridge *crawler.Bridge, reg *retailers.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScrapeError(
				models.ErrCodeInvalidInput,
				"request body must be a JSON object with a retailer field",
				err,
			))
			return
		}

		key := strings.ToLower(strings.TrimSpace(req.Retailer))
		if key == "" {
			respondError(c, models.NewScrapeError(
				models.ErrCodeInvalidInput, "missing required field: retailer", nil))
			return
		}
		if !reg.IsOffline(key) {
			respondError(c, models.NewScrapeError(
				models.ErrCodeInvalidInput,
				"retailer is not crawler-backed: "+key,
				nil,
			))
			return
		}

		maxURLs := req.MaxURLs
		if maxURLs <= 0 {
			maxURLs = defaultCrawlMaxURLs
		}

		if err := bridge.StartCrawl(key, maxURLs); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":   "started",
			"retailer": key,
			"maxUrls":  maxURLs,
		})
	}
}
