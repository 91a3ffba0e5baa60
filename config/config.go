package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Target    TargetConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL for all traffic (browser and direct HTTP).
	Proxy string
}

// ScraperConfig controls the pagination-and-extraction control loop.
type ScraperConfig struct {
	// RunTimeout bounds one whole scrape run.
	RunTimeout time.Duration // default: 5m

	// GateTimeout bounds a single readiness wait (table body present,
	// data rows present after a pagination advance).
	GateTimeout time.Duration // default: 15s

	// PollInterval is the readiness-gate polling period.
	PollInterval time.Duration // default: 250ms

	// SettleDelay is the extra pause after a readiness gate confirms,
	// absorbing rendering jitter the DOM-ready signal misses.
	SettleDelay time.Duration // default: 1s

	// ClickSettle is the pause between scrolling a pagination control
	// into view and clicking it.
	ClickSettle time.Duration // default: 500ms

	// PagesPerSecond paces page advances (token bucket).
	PagesPerSecond float64 // default: 0.5

	// FailureThreshold is the number of consecutive zero-record pages
	// after which the run aborts.
	FailureThreshold int // default: 3

	// DefaultPages is the page-count fallback when the site reports
	// neither a total-record count nor usable pagination controls.
	DefaultPages int // default: 5

	// BlockedResourceTypes lists resource types to block during the run.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// TargetConfig is the extraction contract for one listing site. The
// defaults target the WETEX exhibitor listing; every selector can be
// overridden by environment to retarget the scraper at another
// paginated, asynchronously rendered table.
type TargetConfig struct {
	// BaseURL is the listing page.
	BaseURL string // default: "https://www.wetex.ae/exhibit"

	// TableBodyID is the id of the tbody that holds the data rows.
	TableBodyID string // default: "tb_exhibit"

	// RowClass marks real data rows; rows without it (headers,
	// structural filler) are never extracted.
	RowClass string // default: "m19-table__content-table-row"

	// FixedCellClass marks the cell that always carries the exhibitor
	// name, regardless of its position in the row.
	FixedCellClass string // default: "fixed-col"

	// HiddenCellClass marks cells that are skipped entirely and do not
	// count toward the positional column index.
	HiddenCellClass string // default: "hidden-col"

	// TotalRecordsID is the id of the element displaying the overall
	// record count.
	TotalRecordsID string // default: "TotalRecords"

	// PaginationSelector matches the clickable page-number controls.
	PaginationSelector string // default: "#pagination li[data-num]"

	// PageButtonClass marks prev/next controls inside the pagination
	// bar; elements carrying it are never clicked as page numbers.
	PageButtonClass string // default: "pagination-button"

	// PageFunc is the page's own pagination entry point, invoked with a
	// zero-indexed page number when no clickable control can be found.
	PageFunc string // default: "SetPageNumber"

	// ListEndpoint is the site's listing fragment endpoint used by the
	// fallback acquirer. Relative to BaseURL's origin.
	ListEndpoint string // default: "/umbraco/surface/wetexdatasurface/GetExhibitorList"

	// PageSize is the number of records the site serves per page.
	PageSize int // default: 20
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting on the API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the in-memory run-result cache.
type CacheConfig struct {
	// MaxEntries bounds the number of cached run results.
	MaxEntries int // default: 100
}

// WebhookConfig controls run-completion notifications.
type WebhookConfig struct {
	// URL receives a POST with the run outcome when set.
	URL string

	// Secret signs the webhook body with HMAC-SHA256 when set.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("EXPOGRAB_HOST", "0.0.0.0"),
			Port: envIntOr("EXPOGRAB_PORT", 8080),
			Mode: envOr("EXPOGRAB_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("EXPOGRAB_HEADLESS", true),
			NoSandbox:  envBoolOr("EXPOGRAB_NO_SANDBOX", false),
			BrowserBin: os.Getenv("EXPOGRAB_BROWSER_BIN"),
			Proxy:      os.Getenv("EXPOGRAB_PROXY"),
		},
		Scraper: ScraperConfig{
			RunTimeout:       envDurationOr("EXPOGRAB_RUN_TIMEOUT", 5*time.Minute),
			GateTimeout:      envDurationOr("EXPOGRAB_GATE_TIMEOUT", 15*time.Second),
			PollInterval:     envDurationOr("EXPOGRAB_POLL_INTERVAL", 250*time.Millisecond),
			SettleDelay:      envDurationOr("EXPOGRAB_SETTLE_DELAY", time.Second),
			ClickSettle:      envDurationOr("EXPOGRAB_CLICK_SETTLE", 500*time.Millisecond),
			PagesPerSecond:   envFloatOr("EXPOGRAB_PAGES_PER_SECOND", 0.5),
			FailureThreshold: envIntOr("EXPOGRAB_FAILURE_THRESHOLD", 3),
			DefaultPages:     envIntOr("EXPOGRAB_DEFAULT_PAGES", 5),
			BlockedResourceTypes: envSliceOr("EXPOGRAB_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Target: TargetConfig{
			BaseURL:            envOr("EXPOGRAB_BASE_URL", "https://www.wetex.ae/exhibit"),
			TableBodyID:        envOr("EXPOGRAB_TABLE_BODY_ID", "tb_exhibit"),
			RowClass:           envOr("EXPOGRAB_ROW_CLASS", "m19-table__content-table-row"),
			FixedCellClass:     envOr("EXPOGRAB_FIXED_CELL_CLASS", "fixed-col"),
			HiddenCellClass:    envOr("EXPOGRAB_HIDDEN_CELL_CLASS", "hidden-col"),
			TotalRecordsID:     envOr("EXPOGRAB_TOTAL_RECORDS_ID", "TotalRecords"),
			PaginationSelector: envOr("EXPOGRAB_PAGINATION_SELECTOR", "#pagination li[data-num]"),
			PageButtonClass:    envOr("EXPOGRAB_PAGE_BUTTON_CLASS", "pagination-button"),
			PageFunc:           envOr("EXPOGRAB_PAGE_FUNC", "SetPageNumber"),
			ListEndpoint:       envOr("EXPOGRAB_LIST_ENDPOINT", "/umbraco/surface/wetexdatasurface/GetExhibitorList"),
			PageSize:           envIntOr("EXPOGRAB_PAGE_SIZE", 20),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("EXPOGRAB_AUTH_ENABLED", true),
			APIKeys: envSliceOr("EXPOGRAB_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("EXPOGRAB_RATE_RPS", 1.0),
			Burst:             envIntOr("EXPOGRAB_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("EXPOGRAB_CACHE_MAX_ENTRIES", 100),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("EXPOGRAB_WEBHOOK_URL"),
			Secret: os.Getenv("EXPOGRAB_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("EXPOGRAB_LOG_LEVEL", "info"),
			Format: envOr("EXPOGRAB_LOG_FORMAT", "text"),
		},
	}
}

// Validate checks that every configured selector compiles and the numeric
// knobs are usable. Overridden selectors are the most likely source of a
// silently broken extraction, so this runs before the browser launches.
func (t TargetConfig) Validate() error {
	if t.BaseURL == "" {
		return fmt.Errorf("target: base URL is required")
	}
	if t.PageSize <= 0 {
		return fmt.Errorf("target: page size must be positive, got %d", t.PageSize)
	}
	selectors := map[string]string{
		"table body":  "#" + t.TableBodyID,
		"data row":    "tr." + t.RowClass,
		"fixed cell":  "td." + t.FixedCellClass,
		"hidden cell": "td." + t.HiddenCellClass,
		"pagination":  t.PaginationSelector,
	}
	for name, sel := range selectors {
		if _, err := cascadia.Parse(sel); err != nil {
			return fmt.Errorf("target: %s selector %q does not compile: %w", name, sel, err)
		}
	}
	return nil
}

// DataRowSelector matches the data rows inside the table body.
func (t TargetConfig) DataRowSelector() string {
	return "#" + t.TableBodyID + " tr." + t.RowClass
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
