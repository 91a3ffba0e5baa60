package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/expograb/cache"
	"github.com/use-agent/expograb/config"
	"github.com/use-agent/expograb/models"
	"github.com/use-agent/expograb/scraper"
	"github.com/use-agent/expograb/webhook"
)

// Run returns a handler for POST /api/v1/runs.
//
// The run is synchronous: the handler blocks until the scrape finishes
// (or its timeout expires) and returns the aggregated records. A run
// that aborts early still responds 200 — partial data over no data.
//
// Requests carrying max_age_ms accept a recent cached result instead of
// forcing a fresh run. When a webhook URL is configured, the run's
// outcome is also delivered there asynchronously.
func Run(sc *scraper.Scraper, store *cache.Cache, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.RunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.RunResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		key := cache.Key(cfg.Target.BaseURL, req.MaxPages)
		if cached, ok := store.Get(key, req.MaxAgeMs); ok {
			c.JSON(http.StatusOK, models.RunResponse{
				Success: true,
				Result:  cached,
				Cached:  true,
				Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(req.Timeout)*time.Second)
		defer cancel()

		result, err := sc.Run(ctx, scraper.RunOptions{MaxPages: req.MaxPages})
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}

		if err != nil {
			notify(cfg.Webhook, "run.failed", result, timing)
			respondError(c, err, timing)
			return
		}

		store.Set(key, result)
		notify(cfg.Webhook, "run.completed", result, timing)

		c.JSON(http.StatusOK, models.RunResponse{
			Success: true,
			Result:  result,
			Timing:  timing,
		})
	}
}

// notify delivers the run outcome to the configured webhook, if any.
// Only a digest is sent; the full record set stays in the API response.
func notify(cfg config.WebhookConfig, eventType string, result *models.RunResult, timing models.TimingInfo) {
	if cfg.URL == "" {
		return
	}
	digest := gin.H{
		"total_ms": timing.TotalMs,
	}
	if result != nil {
		digest["status"] = result.Status
		digest["pages_scraped"] = result.PagesScraped
		digest["total_pages"] = result.TotalPages
		digest["records"] = len(result.Exhibitors)
	}
	webhook.DeliverAsync(cfg.URL, cfg.Secret, &webhook.Event{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      digest,
	})
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.RunResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
