package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartshopza/trolley/retailers"
)

// RetailerInfo describes one registered retailer in GET /api/v1/retailers.
type RetailerInfo struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Offline bool   `json:"offline"`
}

// ListRetailers returns a handler for GET /api/v1/retailers. The list is
// in registration order; offline retailers serve searches only.
func ListRetailers(reg *retailers.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		keys := reg.Keys()
		infos := make([]RetailerInfo, 0, len(keys))
		for _, key := range keys {
			s, ok := reg.Get(key)
			if !ok {
				continue
			}
			infos = append(infos, RetailerInfo{
				Key:     key,
				Name:    s.Name(),
				Offline: reg.IsOffline(key),
			})
		}
		c.JSON(http.StatusOK, gin.H{"retailers": infos})
	}
}
