package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/time/rate"

	"github.com/use-agent/expograb/models"
	"github.com/use-agent/expograb/simhash"
)

// RunOptions are the caller-facing knobs for one scrape run.
type RunOptions struct {
	// MaxPages caps the number of pages visited; zero means every page
	// the site reports.
	MaxPages int
}

// Run executes one full scrape: open a session, discover the page
// count, then walk the pages (readiness gate → extract → recovery
// gesture → fallback acquirers → advance) until the count is exhausted
// or the consecutive-failure threshold aborts the run.
//
// Partial data always wins over no data: any non-fatal stop still
// returns everything collected so far, with the status recording how
// the run ended. Only a session that cannot be opened at all is fatal,
// and even then the cleanup path runs.
func (s *Scraper) Run(ctx context.Context, opts RunOptions) (*models.RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.setRunActive(true)
	defer s.setRunActive(false)

	ctx, cancel := context.WithTimeout(ctx, s.scraperCfg.RunTimeout)
	defer cancel()

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return &models.RunResult{Status: models.StatusFailed}, models.NewScrapeError(
			errCode(err, models.ErrCodeBrowserCrash),
			"failed to open page",
			err,
		)
	}
	// The close uses the ORIGINAL page reference (without the request
	// context), so the session is released even after the run timeout
	// has expired.
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("failed to close page", "error", closeErr)
		}
	}()

	// Stealth and resource blocking only take effect for navigations
	// that happen after they are installed.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}
	router := setupHijack(page, s.scraperCfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	handle := newRodHandle(page.Context(ctx))
	return s.runLoop(ctx, handle, opts, func(pageZero int) []models.Exhibitor {
		return s.fetcher.fetchPage(ctx, s.target, pageZero)
	})
}

// runLoop is the browser-free core of a run, driving one page per
// iteration over any RenderHandle. directFetch is the last acquisition
// tier (nil disables it).
func (s *Scraper) runLoop(ctx context.Context, h RenderHandle, opts RunOptions, directFetch func(pageZero int) []models.Exhibitor) (*models.RunResult, error) {
	result := &models.RunResult{Status: models.StatusFailed}

	if err := h.Navigate(s.target.BaseURL); err != nil {
		return result, models.NewScrapeError(
			errCode(err, models.ErrCodeNavigation),
			"failed to load listing page",
			err,
		)
	}
	slog.Info("listing page loading", "url", s.target.BaseURL)

	tbodySel := "#" + s.target.TableBodyID
	if !awaitCondition(ctx, func() bool { return elementExists(h, tbodySel) },
		s.scraperCfg.GateTimeout, s.scraperCfg.PollInterval) {
		// Not fatal: the count fallbacks and the per-page gates get
		// their own chance before anything is declared failed.
		slog.Warn("table body did not appear in time", "selector", tbodySel)
	}
	settle(ctx, s.scraperCfg.SettleDelay)

	pag := newPaginator(h, s.target, s.scraperCfg)
	pag.determineTotal(ctx, opts.MaxPages)
	result.TotalPages = pag.totalPages

	limiter := rate.NewLimiter(rate.Limit(s.scraperCfg.PagesPerSecond), 1)

	skip := false
	var lastFp uint64
	for pag.phase == phaseAdvancing && ctx.Err() == nil {
		var records []models.Exhibitor
		var snapshot string
		if skip {
			slog.Warn("skipping extraction after failed advance", "page", pag.currentPage)
		} else {
			records, snapshot = s.scrapePage(ctx, h, pag.currentPage, directFetch)
		}

		// A snapshot whose text matches the previous page's means the
		// advance silently did not take effect and the same rows are
		// about to be collected twice.
		if fp := simhash.FingerprintFragment(snapshot); fp != 0 {
			if pag.currentPage > 1 && simhash.Similar(fp, lastFp, 3) {
				slog.Warn("table content matches the previous page",
					"page", pag.currentPage)
			}
			lastFp = fp
		}

		result.Exhibitors = append(result.Exhibitors, records...)
		result.Snapshots = append(result.Snapshots, snapshot)
		result.PagesScraped++
		if len(records) == 0 {
			result.Failures++
		}
		pag.recordResult(len(records))
		if pag.phase != phaseAdvancing {
			break
		}

		if err := limiter.Wait(ctx); err != nil {
			break
		}
		skip = false
		if err := pag.advance(ctx); err != nil {
			slog.Warn("page advance failed", "page", pag.currentPage, "error", err)
			skip = true
		}
	}

	if pag.phase == phaseExhausted {
		result.Status = models.StatusExhausted
	} else {
		// Either the failure threshold tripped or the run timeout
		// expired mid-loop; both are controlled stops with partial data.
		result.Status = models.StatusAborted
	}
	slog.Info("run finished",
		"status", result.Status,
		"pagesScraped", result.PagesScraped,
		"totalPages", result.TotalPages,
		"records", len(result.Exhibitors),
	)
	return result, nil
}

// errCode classifies a failure for the error envelope: a deadline or
// cancellation cause is a timeout whatever operation surfaced it, any
// other cause keeps the operation's own code.
func errCode(err error, fallback string) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.ErrCodeTimeout
	}
	return fallback
}

// scrapePage acquires one page's records, escalating through the
// acquisition tiers: rendered DOM, scroll-recovery retry, in-context
// fetch, direct HTTP. Returns whatever the first yielding tier found,
// plus the table snapshot captured by the primary path.
func (s *Scraper) scrapePage(ctx context.Context, h RenderHandle, page int, directFetch func(pageZero int) []models.Exhibitor) ([]models.Exhibitor, string) {
	rowSel := s.target.DataRowSelector()
	if !awaitCondition(ctx, func() bool { return dataRowCount(h, rowSel) > 0 },
		s.scraperCfg.GateTimeout, s.scraperCfg.PollInterval) {
		slog.Info("no data rows within gate timeout", "page", page)
	}

	records, snapshot := extractRows(h, s.target)
	if len(records) > 0 {
		slog.Info("page extracted", "page", page, "records", len(records))
		return records, snapshot
	}

	// Scroll to the bottom and back: the table's renderer sometimes
	// only fills rows once the viewport has moved.
	slog.Info("no records from rendered table, trying scroll recovery", "page", page)
	_, _ = h.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	settle(ctx, s.scraperCfg.SettleDelay)
	_, _ = h.Eval(`() => window.scrollTo(0, 0)`)
	settle(ctx, s.scraperCfg.SettleDelay)

	records, snapshot = extractRows(h, s.target)
	if len(records) > 0 {
		slog.Info("page extracted after scroll recovery", "page", page, "records", len(records))
		return records, snapshot
	}

	if records = fetchPageInContext(h, s.target, page-1); len(records) > 0 {
		return records, snapshot
	}
	if directFetch != nil {
		if records = directFetch(page - 1); len(records) > 0 {
			return records, snapshot
		}
	}
	return nil, snapshot
}
