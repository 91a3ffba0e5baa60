package scraper

import (
	"context"
	"fmt"
	"time"
)

// awaitCondition polls pred at a fixed interval until it reports true or
// the timeout elapses. Timing out is an expected outcome, not an error:
// the table under scrape populates asynchronously after navigation and
// after every pagination click, and sometimes it simply never does.
func awaitCondition(ctx context.Context, pred func() bool, timeout, interval time.Duration) bool {
	// NewTicker panics on a non-positive interval, and the interval is
	// env-overridable.
	if interval <= 0 {
		interval = time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if pred() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false
		}
	}
}

// settle sleeps for d, returning early if ctx is done. A short settle
// after a readiness gate confirms absorbs rendering jitter the DOM-ready
// signal does not capture.
func settle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// elementExists reports whether at least one element matches the selector.
func elementExists(h RenderHandle, selector string) bool {
	els, err := h.Elements(selector)
	return err == nil && len(els) > 0
}

// dataRowCount returns the number of data rows currently rendered under
// the table body. Errors read as zero rows.
func dataRowCount(h RenderHandle, selector string) int {
	js := fmt.Sprintf(`() => document.querySelectorAll(%q).length`, selector)
	res, err := h.Eval(js)
	if err != nil {
		return 0
	}
	return res.Int()
}
