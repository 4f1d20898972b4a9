package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/clipper/models"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

// Health returns a handler for GET /api/health.
func Health(d *Deps, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
			Store:   d.Store.Kind(),
		})
	}
}
