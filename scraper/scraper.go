package scraper

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/use-agent/expograb/config"
	"github.com/use-agent/expograb/models"
)

// Scraper owns the browser process and runs scrape runs against it.
// Runs are serialized: pagination state lives in the one rendered
// session, so two concurrent runs would trample each other's page
// position. Callers from multiple goroutines simply queue.
type Scraper struct {
	browser    *rod.Browser
	launcher   *launcher.Launcher
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	target     config.TargetConfig
	fetcher    *httpFetcher
	startTime  time.Time

	runMu     sync.Mutex
	runActive bool
	activeMu  sync.Mutex
}

// NewScraper validates the target contract and launches a browser.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, target config.TargetConfig) (*Scraper, error) {
	if err := target.Validate(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid target configuration", err)
	}

	fetcher, err := newHTTPFetcher(target.BaseURL, browserCfg.Proxy)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid base URL", err)
	}

	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), "1920,1080")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL, "headless", browserCfg.Headless)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Scraper{
		browser:    browser,
		launcher:   l,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		target:     target,
		fetcher:    fetcher,
		startTime:  time.Now(),
	}, nil
}

// RunActive reports whether a scrape run is currently in flight.
func (s *Scraper) RunActive() bool {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return s.runActive
}

func (s *Scraper) setRunActive(v bool) {
	s.activeMu.Lock()
	s.runActive = v
	s.activeMu.Unlock()
}

// Uptime reports how long the browser has been up.
func (s *Scraper) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Close kills the browser process and cleans up its temp profile.
// Call this on shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: closing browser")
	s.browser.MustClose()
	s.launcher.Cleanup()
	slog.Info("scraper shutdown complete")
}
