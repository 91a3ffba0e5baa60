package scraper

import (
	"fmt"
	"log/slog"

	"github.com/use-agent/expograb/config"
	"github.com/use-agent/expograb/models"
)

// listQuery builds the fixed query string for the listing endpoint.
// Ordering and search parameters are deliberately constant: they mirror
// what the page's own script sends, and the endpoint has only ever been
// observed with these values.
func listQuery(t config.TargetConfig, pageZero int) string {
	return fmt.Sprintf("%s?PageNumber=%d&Records=%d&OrderBy=1&SearchBy=0&type=1&Search=",
		t.ListEndpoint, pageZero, t.PageSize)
}

// fetchPageInContext is the fallback acquirer: when DOM extraction finds
// nothing on a page, it asks the rendered page itself to fetch the raw
// listing fragment for that page (zero-indexed) and parses the response
// with the same cell-classification rules as the DOM path.
//
// Issuing the request from page context keeps the site's cookies,
// headers and session intact. Every failure — network, script, parse —
// yields an empty slice: this path is best-effort by design and must
// never escalate.
func fetchPageInContext(h RenderHandle, t config.TargetConfig, pageZero int) []models.Exhibitor {
	js := fmt.Sprintf(`() => {
		try {
			const xhr = new XMLHttpRequest();
			xhr.open('GET', %q, false);
			xhr.send();
			if (xhr.status === 200) {
				return xhr.responseText;
			}
		} catch (e) {}
		return "";
	}`, listQuery(t, pageZero))

	res, err := h.Eval(js)
	if err != nil {
		slog.Warn("in-context fetch failed", "page", pageZero+1, "error", err)
		return nil
	}
	fragment := res.Str()
	if fragment == "" || !fragmentHasRows(fragment, t.RowClass) {
		slog.Debug("in-context fetch returned no data rows", "page", pageZero+1)
		return nil
	}

	records := parseRows(fragment, t)
	if len(records) > 0 {
		slog.Info("records recovered via in-context fetch",
			"page", pageZero+1, "records", len(records))
	}
	return records
}
