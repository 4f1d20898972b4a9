package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/clipper/api/handler"
	"github.com/use-agent/clipper/api/middleware"
	"github.com/use-agent/clipper/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// The health endpoint sits outside auth.
func NewRouter(d *handler.Deps, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	api := r.Group("/api")

	// Health needs no auth.
	api.GET("/health", handler.Health(d, startTime))

	// Protected group: auth and rate limit.
	protected := api.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/scrape", handler.Scrape(d))

	batches := handler.NewBatches(d, cfg.Batch.Concurrency)
	protected.POST("/batch/scrape", batches.Post())
	protected.GET("/batch/:id", batches.Get())

	protected.POST("/translate", handler.Translate(d))

	protected.GET("/notion/properties", handler.NotionProperties(d))
	protected.POST("/save-to-notion", handler.SaveToNotion(d))

	return r
}
