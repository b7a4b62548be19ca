package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartshopza/trolley/browser"
	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/retailers"
)

// Health returns a handler for GET /api/v1/health.
//
// The browser field reports the shared session state; a closed session
// degrades status since every headless retailer would fail until relaunch.
func Health(session *browser.Session, reg *retailers.Registry, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := session.State()

		status := "healthy"
		if state == browser.StateClosed {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Browser:   state.String(),
			Retailers: len(reg.Keys()),
			Version:   "0.1.0",
		})
	}
}
