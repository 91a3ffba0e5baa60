package scraper

import (
	"errors"
	"strings"
	"testing"

	"github.com/ysmood/gson"
)

func TestListQuery(t *testing.T) {
	got := listQuery(testTarget(), 3)
	want := "/umbraco/surface/wetexdatasurface/GetExhibitorList?PageNumber=3&Records=20&OrderBy=1&SearchBy=0&type=1&Search="
	if got != want {
		t.Errorf("listQuery:\n got %s\nwant %s", got, want)
	}
}

func TestFetchPageInContext_ParsesFragment(t *testing.T) {
	fragment := rowMarkup("Fallback Co", "D9", "Jordan", "Energy", "Wind", "Hall 2")
	h := &fakeHandle{
		evalFn: func(js string) (gson.JSON, error) {
			if !strings.Contains(js, "XMLHttpRequest") {
				t.Errorf("unexpected eval: %s", js)
			}
			if !strings.Contains(js, "PageNumber=1") {
				t.Errorf("expected zero-indexed page 1 in request, got: %s", js)
			}
			return gson.New(fragment), nil
		},
	}

	records := fetchPageInContext(h, testTarget(), 1)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "Fallback Co" || records[0].Country != "Jordan" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestFetchPageInContext_EvalErrorYieldsEmpty(t *testing.T) {
	h := &fakeHandle{
		evalFn: func(string) (gson.JSON, error) {
			return gson.New(nil), errors.New("page context gone")
		},
	}
	if records := fetchPageInContext(h, testTarget(), 0); len(records) != 0 {
		t.Errorf("expected no records on eval failure, got %d", len(records))
	}
}

func TestFetchPageInContext_NonRowResponseYieldsEmpty(t *testing.T) {
	h := &fakeHandle{
		evalFn: func(string) (gson.JSON, error) {
			return gson.New("<html><body>maintenance</body></html>"), nil
		},
	}
	if records := fetchPageInContext(h, testTarget(), 0); len(records) != 0 {
		t.Errorf("expected no records from a non-fragment response, got %d", len(records))
	}
}
