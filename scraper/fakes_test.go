package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/ysmood/gson"

	"github.com/use-agent/expograb/config"
)

func testTarget() config.TargetConfig {
	return config.TargetConfig{
		BaseURL:            "https://expo.example/exhibit",
		TableBodyID:        "tb_exhibit",
		RowClass:           "m19-table__content-table-row",
		FixedCellClass:     "fixed-col",
		HiddenCellClass:    "hidden-col",
		TotalRecordsID:     "TotalRecords",
		PaginationSelector: "#pagination li[data-num]",
		PageButtonClass:    "pagination-button",
		PageFunc:           "SetPageNumber",
		ListEndpoint:       "/umbraco/surface/wetexdatasurface/GetExhibitorList",
		PageSize:           20,
	}
}

func testScraperCfg() config.ScraperConfig {
	return config.ScraperConfig{
		RunTimeout:       10 * time.Second,
		GateTimeout:      40 * time.Millisecond,
		PollInterval:     5 * time.Millisecond,
		SettleDelay:      0,
		ClickSettle:      0,
		PagesPerSecond:   10000,
		FailureThreshold: 3,
		DefaultPages:     5,
	}
}

// rowMarkup builds one data row in the target site's markup.
func rowMarkup(name, stand, country, sector, activity, hall string) string {
	cell := func(class, text string) string {
		return `<td class="m19-table__content-table-cell ` + class + `">` + text + `</td>`
	}
	return `<tr class="m19-table__content-table-row">` +
		cell("fixed-col", name) +
		cell("hidden-col", "internal-id") +
		cell("", stand) +
		cell("", country) +
		cell("", sector) +
		cell("", activity) +
		cell("", hall) +
		`</tr>`
}

// tbodyMarkup wraps rows in the table body the page renders.
func tbodyMarkup(rows ...string) string {
	return `<tbody id="tb_exhibit">` + strings.Join(rows, "") + `</tbody>`
}

type fakeElement struct {
	text    string
	attrs   map[string]string
	onClick func()

	clickErr  error
	scrollErr error
	clicks    int
	scrolls   int
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Click() error {
	e.clicks++
	if e.clickErr != nil {
		return e.clickErr
	}
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) ScrollIntoView() error {
	e.scrolls++
	return e.scrollErr
}

type fakeHandle struct {
	navigateErr error
	navigated   []string
	evalFn      func(js string) (gson.JSON, error)
	elementsFn  func(selector string) ([]ElementHandle, error)
	closed      bool
}

func (h *fakeHandle) Navigate(url string) error {
	h.navigated = append(h.navigated, url)
	return h.navigateErr
}

func (h *fakeHandle) Eval(js string) (gson.JSON, error) {
	if h.evalFn == nil {
		return gson.New(nil), nil
	}
	return h.evalFn(js)
}

func (h *fakeHandle) Elements(selector string) ([]ElementHandle, error) {
	if h.elementsFn == nil {
		return nil, nil
	}
	return h.elementsFn(selector)
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

// sitePage is one page of the simulated listing.
type sitePage struct {
	dom      string // table body outerHTML as the browser would render it
	fallback string // response of the listing endpoint for this page
}

// siteFake simulates a paginated listing site behind the RenderHandle
// interface: navigation resets to page 1, pagination clicks and the
// page function switch pages, and eval requests are answered from the
// current page's markup.
type siteFake struct {
	fakeHandle
	totalRecordsText string
	pages            []sitePage
	current          int // zero-based
}

func newSiteFake(totalRecordsText string, pages []sitePage) *siteFake {
	s := &siteFake{totalRecordsText: totalRecordsText, pages: pages}
	s.evalFn = s.eval
	s.elementsFn = s.elements
	return s
}

func (s *siteFake) page() sitePage {
	if s.current < 0 || s.current >= len(s.pages) {
		return sitePage{}
	}
	return s.pages[s.current]
}

func (s *siteFake) eval(js string) (gson.JSON, error) {
	switch {
	case strings.Contains(js, "querySelectorAll"):
		return gson.New(strings.Count(s.page().dom, `<tr class="m19-table__content-table-row"`)), nil
	case strings.Contains(js, "getElementById"):
		return gson.New(s.page().dom), nil
	case strings.Contains(js, "XMLHttpRequest"):
		return gson.New(s.page().fallback), nil
	case strings.Contains(js, "SetPageNumber"):
		var n int
		if _, err := fmt.Sscanf(js, "() => SetPageNumber(%d)", &n); err == nil {
			s.current = n
		}
		return gson.New(nil), nil
	default:
		return gson.New(nil), nil
	}
}

func (s *siteFake) elements(selector string) ([]ElementHandle, error) {
	switch selector {
	case "#tb_exhibit":
		return []ElementHandle{&fakeElement{}}, nil
	case "#TotalRecords":
		if s.totalRecordsText == "" {
			return nil, nil
		}
		return []ElementHandle{&fakeElement{text: s.totalRecordsText}}, nil
	case "#pagination li[data-num]":
		els := make([]ElementHandle, len(s.pages))
		for i := range s.pages {
			page := i
			els[i] = &fakeElement{
				attrs:   map[string]string{"data-num": fmt.Sprint(i + 1)},
				onClick: func() { s.current = page },
			}
		}
		return els, nil
	default:
		return nil, nil
	}
}
