package scraper

import (
	"reflect"
	"testing"

	"github.com/use-agent/expograb/models"
)

func TestParseRows_CellClassification(t *testing.T) {
	fragment := tbodyMarkup(rowMarkup("Acme Co", "B12", "UAE", "Energy", "Solar", "Hall 3"))

	records := parseRows(fragment, testTarget())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	want := models.Exhibitor{
		Name:             "Acme Co",
		StandNumber:      "B12",
		Country:          "UAE",
		Sector:           "Energy",
		BusinessActivity: "Solar",
		Hall:             "Hall 3",
	}
	if records[0] != want {
		t.Errorf("record mismatch:\n got %+v\nwant %+v", records[0], want)
	}
}

func TestParseRows_FixedCellPositionIrrelevant(t *testing.T) {
	// Name cell last instead of first; positional columns must be
	// unaffected because the fixed cell never counts toward the index.
	fragment := tbodyMarkup(`<tr class="m19-table__content-table-row">` +
		`<td class="m19-table__content-table-cell">B12</td>` +
		`<td class="m19-table__content-table-cell">UAE</td>` +
		`<td class="m19-table__content-table-cell">Energy</td>` +
		`<td class="m19-table__content-table-cell">Solar</td>` +
		`<td class="m19-table__content-table-cell">Hall 3</td>` +
		`<td class="m19-table__content-table-cell fixed-col">Acme Co</td>` +
		`</tr>`)

	records := parseRows(fragment, testTarget())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "Acme Co" || records[0].StandNumber != "B12" || records[0].Hall != "Hall 3" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestParseRows_SkipsRowsWithoutMarkerClass(t *testing.T) {
	fragment := tbodyMarkup(
		`<tr><td class="fixed-col">Header Corp</td><td>Stand</td></tr>`,
		rowMarkup("Real Co", "A1", "Oman", "Water", "Desalination", "Hall 1"),
		`<tr class="spacer-row"><td class="fixed-col">Spacer Inc</td></tr>`,
	)

	records := parseRows(fragment, testTarget())
	if len(records) != 1 {
		t.Fatalf("expected only the marked row, got %d records", len(records))
	}
	if records[0].Name != "Real Co" {
		t.Errorf("expected Real Co, got %q", records[0].Name)
	}
}

func TestParseRows_DiscardsEmptyName(t *testing.T) {
	fragment := tbodyMarkup(
		rowMarkup("", "B1", "UAE", "Energy", "Solar", "Hall 1"),
		rowMarkup("   ", "B2", "UAE", "Energy", "Solar", "Hall 1"),
		rowMarkup("Kept Co", "B3", "UAE", "Energy", "Solar", "Hall 1"),
	)

	records := parseRows(fragment, testTarget())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "Kept Co" {
		t.Errorf("expected Kept Co, got %q", records[0].Name)
	}
}

func TestParseRows_TrimsWhitespace(t *testing.T) {
	fragment := tbodyMarkup(rowMarkup("  Acme Co \n", " B12 ", "\tUAE", "Energy", "Solar", "Hall 3 "))

	records := parseRows(fragment, testTarget())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "Acme Co" || records[0].StandNumber != "B12" || records[0].Country != "UAE" {
		t.Errorf("fields not trimmed: %+v", records[0])
	}
}

func TestParseRows_MissingCellsDefaultEmpty(t *testing.T) {
	fragment := tbodyMarkup(`<tr class="m19-table__content-table-row">` +
		`<td class="m19-table__content-table-cell fixed-col">Short Row Co</td>` +
		`<td class="m19-table__content-table-cell">C7</td>` +
		`</tr>`)

	records := parseRows(fragment, testTarget())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.StandNumber != "C7" || r.Country != "" || r.Sector != "" || r.Hall != "" {
		t.Errorf("expected empty defaults for absent cells, got %+v", r)
	}
}

func TestParseRows_Idempotent(t *testing.T) {
	fragment := tbodyMarkup(
		rowMarkup("Acme Co", "B12", "UAE", "Energy", "Solar", "Hall 3"),
		rowMarkup("Borealis", "C4", "Norway", "Water", "Pumps", "Hall 1"),
	)

	first := parseRows(fragment, testTarget())
	second := parseRows(fragment, testTarget())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated parse differs:\n first %+v\nsecond %+v", first, second)
	}
}

func TestParseRows_EmptyFragment(t *testing.T) {
	if records := parseRows("", testTarget()); len(records) != 0 {
		t.Errorf("empty fragment should yield no records, got %d", len(records))
	}
	if records := parseRows(tbodyMarkup(), testTarget()); len(records) != 0 {
		t.Errorf("empty tbody should yield no records, got %d", len(records))
	}
}

func TestExtractRows_MissingTableBody(t *testing.T) {
	site := newSiteFake("", []sitePage{{dom: ""}})
	records, fragment := extractRows(site, testTarget())
	if len(records) != 0 || fragment != "" {
		t.Errorf("missing table body should yield nothing, got %d records, fragment %q", len(records), fragment)
	}
}

func TestExtractRows_ReturnsSnapshot(t *testing.T) {
	dom := tbodyMarkup(rowMarkup("Acme Co", "B12", "UAE", "Energy", "Solar", "Hall 3"))
	site := newSiteFake("", []sitePage{{dom: dom}})

	records, fragment := extractRows(site, testTarget())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if fragment != dom {
		t.Errorf("snapshot should be the raw table body markup")
	}
}

func TestFragmentHasRows(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     bool
	}{
		{"with data row", rowMarkup("Acme", "B1", "UAE", "E", "S", "H"), true},
		{"header row only", `<tr><td>Name</td></tr>`, false},
		{"partial class name", `<tr class="m19-table__content-table-row-x"><td>x</td></tr>`, false},
		{"empty", "", false},
		{"error page", `<html><body>Service unavailable</body></html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fragmentHasRows(tt.fragment, testTarget().RowClass); got != tt.want {
				t.Errorf("fragmentHasRows() = %v, want %v", got, tt.want)
			}
		})
	}
}
