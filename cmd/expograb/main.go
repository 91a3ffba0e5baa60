package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/use-agent/expograb/config"
	"github.com/use-agent/expograb/models"
	"github.com/use-agent/expograb/output"
	"github.com/use-agent/expograb/scraper"
)

func main() {
	maxPages := flag.Int("max-pages", 0, "cap on listing pages to scrape (0 = all)")
	headless := flag.Bool("headless", true, "run the browser headless")
	csvPath := flag.String("csv", "exhibitors.csv", "CSV output path (empty to skip)")
	jsonPath := flag.String("json", "exhibitors.json", "JSON output path (empty to skip)")
	snapshotDir := flag.String("snapshots", "", "directory for per-page Markdown snapshots (empty to skip)")
	flag.Parse()

	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()
	cfg.Browser.Headless = *headless

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("expograb starting",
		"target", cfg.Target.BaseURL,
		"maxPages", *maxPages,
		"headless", cfg.Browser.Headless,
	)

	// ── 3. Initialise scraper (launches browser) ────────────────────
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper, cfg.Target)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}
	defer sc.Close()

	// ── 4. Run the scrape ───────────────────────────────────────────
	result, err := sc.Run(context.Background(), scraper.RunOptions{MaxPages: *maxPages})
	if err != nil {
		slog.Error("run failed", "error", err)
	}

	// ── 5. Report and persist whatever was collected ────────────────
	output.PrintSummary(os.Stdout, result)

	if len(result.Exhibitors) == 0 {
		slog.Warn("no exhibitors collected, skipping file output")
		if result.Status == models.StatusFailed {
			os.Exit(1)
		}
		return
	}

	if *csvPath != "" {
		if err := output.WriteCSV(*csvPath, result.Exhibitors); err != nil {
			slog.Error("CSV output failed", "error", err)
		} else {
			slog.Info("CSV written", "path", *csvPath, "records", len(result.Exhibitors))
		}
	}
	if *jsonPath != "" {
		if err := output.WriteJSON(*jsonPath, result.Exhibitors); err != nil {
			slog.Error("JSON output failed", "error", err)
		} else {
			slog.Info("JSON written", "path", *jsonPath, "records", len(result.Exhibitors))
		}
	}
	if *snapshotDir != "" {
		if err := output.WriteSnapshots(*snapshotDir, result.Snapshots); err != nil {
			slog.Error("snapshot archive failed", "error", err)
		} else {
			slog.Info("snapshots written", "dir", *snapshotDir)
		}
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
