package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ysmood/gson"
)

func newTestPaginator(h RenderHandle) *paginator {
	return newPaginator(h, testTarget(), testScraperCfg())
}

func TestDetermineTotal_FromRecordCounter(t *testing.T) {
	tests := []struct {
		records string
		want    int
	}{
		{"97", 5},
		{"100", 5},
		{"101", 6},
		{"20", 1},
		{"1", 1},
	}
	for _, tt := range tests {
		site := newSiteFake(tt.records, []sitePage{{}})
		p := newTestPaginator(site)
		p.determineTotal(context.Background(), 0)
		if p.totalPages != tt.want {
			t.Errorf("records=%s: totalPages = %d, want %d", tt.records, p.totalPages, tt.want)
		}
		if p.phase != phaseAdvancing {
			t.Errorf("records=%s: expected advancing phase", tt.records)
		}
	}
}

func TestDetermineTotal_FallsBackToPaginationScan(t *testing.T) {
	// Counter unparsable → highest data-num among the controls wins.
	site := newSiteFake("loading…", []sitePage{{}, {}, {}, {}, {}, {}, {}})
	p := newTestPaginator(site)
	p.determineTotal(context.Background(), 0)
	if p.totalPages != 7 {
		t.Errorf("totalPages = %d, want 7 from pagination scan", p.totalPages)
	}
}

func TestDetermineTotal_FallsBackToDefault(t *testing.T) {
	h := &fakeHandle{} // no counter, no pagination controls
	p := newPaginator(h, testTarget(), testScraperCfg())
	p.determineTotal(context.Background(), 0)
	if p.totalPages != testScraperCfg().DefaultPages {
		t.Errorf("totalPages = %d, want default %d", p.totalPages, testScraperCfg().DefaultPages)
	}
}

func TestDetermineTotal_MaxPagesCap(t *testing.T) {
	site := newSiteFake("97", []sitePage{{}})
	p := newTestPaginator(site)
	p.determineTotal(context.Background(), 2)
	if p.totalPages != 2 {
		t.Errorf("totalPages = %d, want cap of 2", p.totalPages)
	}
}

func TestDetermineTotal_ZeroRecordsNotTrusted(t *testing.T) {
	site := newSiteFake("0", []sitePage{{}, {}, {}})
	p := newTestPaginator(site)
	p.determineTotal(context.Background(), 0)
	if p.totalPages != 3 {
		t.Errorf("totalPages = %d, want 3 from pagination scan", p.totalPages)
	}
}

func TestAdvance_ClicksPageControl(t *testing.T) {
	dom := tbodyMarkup(rowMarkup("A", "1", "", "", "", ""))
	site := newSiteFake("40", []sitePage{{dom: dom}, {dom: dom}})
	p := newTestPaginator(site)
	p.determineTotal(context.Background(), 0)

	if err := p.advance(context.Background()); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if p.currentPage != 2 {
		t.Errorf("currentPage = %d, want 2", p.currentPage)
	}
	if site.current != 1 {
		t.Errorf("site page = %d, want 1 (clicked to page 2)", site.current)
	}
}

func TestAdvance_UsesPageFuncWhenControlMissing(t *testing.T) {
	// A handle with no pagination controls but a working page function.
	current := 0
	h := &fakeHandle{
		evalFn: func(js string) (gson.JSON, error) {
			switch {
			case strings.Contains(js, "SetPageNumber"):
				current = 1
				return gson.New(nil), nil
			case strings.Contains(js, "querySelectorAll"):
				if current == 1 {
					return gson.New(1), nil
				}
				return gson.New(0), nil
			default:
				return gson.New(nil), nil
			}
		},
	}
	p := newPaginator(h, testTarget(), testScraperCfg())
	p.totalPages = 3
	p.phase = phaseAdvancing

	if err := p.advance(context.Background()); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if current != 1 {
		t.Error("expected page function to be invoked with zero-indexed target")
	}
}

func TestAdvance_SkipsPrevNextControls(t *testing.T) {
	clickedNav := false
	clickedPage := false
	h := &fakeHandle{
		elementsFn: func(sel string) ([]ElementHandle, error) {
			if sel != "#pagination li[data-num]" {
				return nil, nil
			}
			return []ElementHandle{
				&fakeElement{
					attrs:   map[string]string{"data-num": "2", "class": "pagination-button next"},
					onClick: func() { clickedNav = true },
				},
				&fakeElement{
					attrs:   map[string]string{"data-num": "2"},
					onClick: func() { clickedPage = true },
				},
			}, nil
		},
		evalFn: func(js string) (gson.JSON, error) {
			return gson.New(1), nil // rows always present
		},
	}
	p := newPaginator(h, testTarget(), testScraperCfg())
	p.totalPages = 3
	p.phase = phaseAdvancing

	if err := p.advance(context.Background()); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if clickedNav {
		t.Error("prev/next control must never be clicked as a page number")
	}
	if !clickedPage {
		t.Error("expected the real page control to be clicked")
	}
}

func TestAdvance_ErrorWhenBothStrategiesFail(t *testing.T) {
	h := &fakeHandle{
		evalFn: func(js string) (gson.JSON, error) {
			return gson.New(nil), errors.New("script blew up")
		},
	}
	p := newPaginator(h, testTarget(), testScraperCfg())
	p.totalPages = 3
	p.phase = phaseAdvancing

	if err := p.advance(context.Background()); err == nil {
		t.Fatal("expected error when click and page function both fail")
	}
	if p.currentPage != 2 {
		t.Errorf("currentPage = %d, want 2 (must move forward on failure)", p.currentPage)
	}
}

func TestAdvance_Exhaustion(t *testing.T) {
	p := newPaginator(&fakeHandle{}, testTarget(), testScraperCfg())
	p.totalPages = 1
	p.phase = phaseAdvancing

	if err := p.advance(context.Background()); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if p.phase != phaseExhausted {
		t.Error("expected exhausted phase past the last page")
	}
}

func TestRecordResult_FailureTracking(t *testing.T) {
	p := newPaginator(&fakeHandle{}, testTarget(), testScraperCfg())
	p.phase = phaseAdvancing

	p.recordResult(0)
	p.recordResult(0)
	if p.failures != 2 || p.phase == phaseAborted {
		t.Fatalf("after two failures: failures=%d phase=%v", p.failures, p.phase)
	}

	// Any yielding page resets the streak.
	p.recordResult(15)
	if p.failures != 0 {
		t.Errorf("failures = %d, want 0 after a yielding page", p.failures)
	}

	p.recordResult(0)
	p.recordResult(0)
	p.recordResult(0)
	if p.phase != phaseAborted {
		t.Error("expected abort at exactly three consecutive failures")
	}
}
