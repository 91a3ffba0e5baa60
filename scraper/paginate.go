package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/use-agent/expograb/config"
)

// phase is the pagination controller's lifecycle state.
type phase int

const (
	phaseInit phase = iota
	phaseDetermining
	phaseAdvancing
	phaseExhausted
	phaseAborted
)

// paginator owns page-count discovery, page advancement and the
// consecutive-failure bookkeeping that decides when a run gives up.
// It is not safe for concurrent use; one paginator drives one render
// session (pagination state is global to that session — clicking page 2
// mutates the same DOM page 1 was read from).
type paginator struct {
	handle RenderHandle
	target config.TargetConfig
	cfg    config.ScraperConfig

	phase       phase
	totalPages  int
	currentPage int
	failures    int
}

func newPaginator(h RenderHandle, t config.TargetConfig, cfg config.ScraperConfig) *paginator {
	return &paginator{
		handle:      h,
		target:      t,
		cfg:         cfg,
		phase:       phaseInit,
		currentPage: 1,
	}
}

// determineTotal estimates the page count once, at run start, trying in
// order: the displayed total-record counter, the highest page-number
// attribute present in the pagination bar, and finally a configured
// default. maxPages, when positive, upper-bounds the result.
//
// Page 1 is already rendered when this runs, so the controller enters
// the advancing phase without navigating.
func (p *paginator) determineTotal(ctx context.Context, maxPages int) {
	p.phase = phaseDetermining

	total := 0
	if records := p.readTotalRecords(ctx); records > 0 {
		total = (records + p.target.PageSize - 1) / p.target.PageSize
		slog.Info("page count from record counter",
			"totalRecords", records, "pageSize", p.target.PageSize, "totalPages", total)
	} else if scanned := p.scanPagination(); scanned > 0 {
		total = scanned
		slog.Info("page count from pagination controls", "totalPages", total)
	} else {
		total = p.cfg.DefaultPages
		slog.Warn("page count unavailable, using default", "totalPages", total)
	}

	if maxPages > 0 && total > maxPages {
		slog.Info("limiting page count", "computed", total, "cap", maxPages)
		total = maxPages
	}

	p.totalPages = total
	p.phase = phaseAdvancing
}

// readTotalRecords waits briefly for the total-record counter element to
// carry text, then parses it. Zero means unavailable.
func (p *paginator) readTotalRecords(ctx context.Context) int {
	sel := "#" + p.target.TotalRecordsID
	var text string
	ok := awaitCondition(ctx, func() bool {
		els, err := p.handle.Elements(sel)
		if err != nil || len(els) == 0 {
			return false
		}
		t, err := els[0].Text()
		if err != nil {
			return false
		}
		text = strings.TrimSpace(t)
		return text != ""
	}, p.cfg.GateTimeout, p.cfg.PollInterval)
	if !ok {
		return 0
	}

	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		slog.Warn("record counter not parsable", "text", text)
		return 0
	}
	return n
}

// scanPagination returns the highest page index advertised by the
// pagination controls, or zero when none can be read.
func (p *paginator) scanPagination() int {
	els, err := p.handle.Elements(p.target.PaginationSelector)
	if err != nil {
		return 0
	}
	max := 0
	for _, el := range els {
		num, err := el.Attribute("data-num")
		if err != nil {
			continue
		}
		if n, err := strconv.Atoi(num); err == nil && n > max {
			max = n
		}
	}
	return max
}

// advance moves from the current page to the next one. Two strategies,
// the second only on failure of the first:
//
//  1. click the pagination control whose data-num equals the target page
//     (scrolled into view first, with a short settle) — prev/next
//     buttons are never candidates;
//  2. invoke the page's own pagination entry point with the zero-indexed
//     target page.
//
// Either way, the authoritative confirmation that the page actually
// changed is the readiness gate on the data rows, not a fixed sleep. A
// gate timeout is logged but does not fail the advance: the page still
// gets its extraction-and-fallback chance, and a genuinely dead page
// is counted through its zero yield. currentPage moves forward even
// when the advance fails, so a broken page is skipped rather than
// retried forever.
func (p *paginator) advance(ctx context.Context) error {
	p.currentPage++
	if p.currentPage > p.totalPages {
		p.phase = phaseExhausted
		return nil
	}
	target := p.currentPage

	if err := p.clickPageNumber(ctx, target); err != nil {
		slog.Debug("pagination control click unavailable, invoking page function",
			"page", target, "reason", err)
		js := fmt.Sprintf(`() => %s(%d)`, p.target.PageFunc, target-1)
		if _, evalErr := p.handle.Eval(js); evalErr != nil {
			return fmt.Errorf("advance to page %d: click failed (%v) and %s failed: %w",
				target, err, p.target.PageFunc, evalErr)
		}
	}

	rowSel := p.target.DataRowSelector()
	ok := awaitCondition(ctx, func() bool {
		return dataRowCount(p.handle, rowSel) > 0
	}, p.cfg.GateTimeout, p.cfg.PollInterval)
	if !ok {
		slog.Warn("data rows did not reappear after advance",
			"page", target, "timeout", p.cfg.GateTimeout)
	}
	settle(ctx, p.cfg.SettleDelay)
	return nil
}

// clickPageNumber locates and clicks the pagination control for the
// target page.
func (p *paginator) clickPageNumber(ctx context.Context, page int) error {
	els, err := p.handle.Elements(p.target.PaginationSelector)
	if err != nil {
		return fmt.Errorf("query pagination controls: %w", err)
	}

	want := strconv.Itoa(page)
	for _, el := range els {
		num, err := el.Attribute("data-num")
		if err != nil || num != want {
			continue
		}
		class, _ := el.Attribute("class")
		if containsClass(class, p.target.PageButtonClass) {
			// prev/next control, not a page number
			continue
		}
		if err := el.ScrollIntoView(); err != nil {
			return fmt.Errorf("scroll to page control %d: %w", page, err)
		}
		settle(ctx, p.cfg.ClickSettle)
		if err := el.Click(); err != nil {
			return fmt.Errorf("click page control %d: %w", page, err)
		}
		return nil
	}
	return fmt.Errorf("no pagination control for page %d", page)
}

// recordResult feeds a page's record yield into the failure tracker.
// Any page yielding at least one record, by whatever path, resets the
// consecutive-failure count; a zero-yield page bumps it, and reaching
// the threshold aborts the run (a controlled stop, not a crash).
func (p *paginator) recordResult(records int) {
	if records > 0 {
		p.failures = 0
		return
	}
	p.failures++
	slog.Warn("page yielded no records", "page", p.currentPage,
		"consecutiveFailures", p.failures, "threshold", p.cfg.FailureThreshold)
	if p.failures >= p.cfg.FailureThreshold {
		p.phase = phaseAborted
	}
}
