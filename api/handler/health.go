package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/expograb/models"
	"github.com/use-agent/expograb/scraper"
)

// Health returns a handler for GET /api/v1/health.
func Health(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        "healthy",
			UptimeSeconds: int64(sc.Uptime().Seconds()),
			RunActive:     sc.RunActive(),
		})
	}
}
