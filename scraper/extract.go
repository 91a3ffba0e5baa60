package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/use-agent/expograb/config"
	"github.com/use-agent/expograb/models"
)

// extractRows pulls the table body's current markup out of the rendered
// page and parses it into exhibitor records. A missing table body or an
// eval failure reads as "nothing found" — the orchestrator decides
// whether to retry or fall back, so no error is surfaced here.
//
// The raw fragment is returned alongside the records so the caller can
// archive a per-page snapshot without a second round trip.
func extractRows(h RenderHandle, t config.TargetConfig) ([]models.Exhibitor, string) {
	js := fmt.Sprintf(`() => {
		const el = document.getElementById(%q);
		return el ? el.outerHTML : "";
	}`, t.TableBodyID)

	res, err := h.Eval(js)
	if err != nil {
		return nil, ""
	}
	fragment := res.Str()
	if fragment == "" {
		return nil, ""
	}
	return parseRows(fragment, t), fragment
}

// parseRows applies the cell-classification rules to a detached table
// fragment. The same rules serve the rendered-DOM path and the fallback
// acquirer's raw response:
//
//   - only rows carrying the data-row marker class are extracted; header
//     and structural rows never produce records even though they are
//     structurally <tr> elements;
//   - a cell carrying the fixed-column class is always the name,
//     regardless of position;
//   - cells carrying the hidden-column class are skipped and do not
//     count toward the positional index;
//   - the remaining cells map to stand, country, sector, business
//     activity and hall by their ordinal position among the counted
//     cells.
//
// Rows that resolve to an empty name are dropped.
func parseRows(fragment string, t config.TargetConfig) []models.Exhibitor {
	// <tbody> and <tr> fragments are foster-parented out of existence by
	// the HTML5 tree builder unless a table encloses them.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + fragment + "</table>"))
	if err != nil {
		return nil
	}

	var records []models.Exhibitor
	doc.Find("tr." + t.RowClass).Each(func(_ int, row *goquery.Selection) {
		var rec models.Exhibitor
		idx := 0
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			switch {
			case cell.HasClass(t.FixedCellClass):
				rec.Name = text
			case cell.HasClass(t.HiddenCellClass):
				// skipped entirely, keeps idx untouched
			default:
				switch idx {
				case 0:
					rec.StandNumber = text
				case 1:
					rec.Country = text
				case 2:
					rec.Sector = text
				case 3:
					rec.BusinessActivity = text
				case 4:
					rec.Hall = text
				}
				idx++
			}
		})
		if rec.Name != "" {
			records = append(records, rec)
		}
	})
	return records
}

// fragmentHasRows is a cheap tokenizer pass checking whether a raw
// response contains at least one data row, before committing to a full
// parse. Fallback endpoints occasionally answer with error pages or
// empty shells; those are rejected here.
func fragmentHasRows(fragment, rowClass string) bool {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken:
			name, hasAttr := tokenizer.TagName()
			if string(name) != "tr" || !hasAttr {
				continue
			}
			for {
				key, val, more := tokenizer.TagAttr()
				if string(key) == "class" && containsClass(string(val), rowClass) {
					return true
				}
				if !more {
					break
				}
			}
		}
	}
}

// containsClass checks for a whole-word class match in a class attribute.
func containsClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}
