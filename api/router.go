package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartshopza/trolley/aggregate"
	"github.com/smartshopza/trolley/api/handler"
	"github.com/smartshopza/trolley/api/middleware"
	"github.com/smartshopza/trolley/browser"
	"github.com/smartshopza/trolley/cache"
	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/crawler"
	"github.com/smartshopza/trolley/retailers"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(agg *aggregate.Aggregator, reg *retailers.Registry, session *browser.Session, bridge *crawler.Bridge, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(session, reg, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Search
	protected.GET("/search", handler.Search(agg, cc))

	// Basket comparison
	protected.POST("/basket/compare", handler.CompareBasket(agg))

	// Retailer listing
	protected.GET("/retailers", handler.ListRetailers(reg))

	// Catalogue crawl
	protected.POST("/crawl", handler.PostCrawl(bridge, reg))

	return r
}
