package api

import (
	"github.com/gin-gonic/gin"

	"github.com/use-agent/expograb/api/handler"
	"github.com/use-agent/expograb/api/middleware"
	"github.com/use-agent/expograb/cache"
	"github.com/use-agent/expograb/config"
	"github.com/use-agent/expograb/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(sc))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Scrape runs. Synchronous: the response carries the full result.
	// Concurrent requests queue on the single browser session.
	store := cache.New(cfg.Cache.MaxEntries)
	protected.POST("/runs", handler.Run(sc, store, cfg))

	return r
}
