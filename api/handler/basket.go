package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartshopza/trolley/aggregate"
	"github.com/smartshopza/trolley/models"
)

// CompareBasket returns a handler for POST /api/v1/basket/compare.
//
// The body is {"items": ["milk", "bread", ...]}. The response maps each
// interactive retailer name to its priced basket. Scrape failures surface
// per item inside the result, never as a request-level error.
func CompareBasket(agg *aggregate.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BasketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScrapeError(
				models.ErrCodeInvalidInput,
				"request body must be a JSON object with an items array",
				err,
			))
			return
		}

		results, err := agg.CompareBasket(c.Request.Context(), req.Items)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}
