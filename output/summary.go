package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/use-agent/expograb/models"
)

// topCountries is how many countries the summary lists.
const topCountries = 5

// sampleRecords is how many example records the summary shows.
const sampleRecords = 3

// PrintSummary writes a human-readable digest of a run: totals, the
// most frequent countries and a few sample records. Reporting only —
// nothing downstream consumes this.
func PrintSummary(w io.Writer, result *models.RunResult) {
	fmt.Fprintf(w, "Run status: %s\n", result.Status)
	fmt.Fprintf(w, "Pages scraped: %d/%d\n", result.PagesScraped, result.TotalPages)
	fmt.Fprintf(w, "Exhibitors collected: %d\n", len(result.Exhibitors))

	if len(result.Exhibitors) == 0 {
		return
	}

	type countryCount struct {
		country string
		count   int
	}
	var counts []countryCount
	for country, n := range result.CountryCounts() {
		counts = append(counts, countryCount{country, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].country < counts[j].country
	})

	fmt.Fprintf(w, "\nTop countries:\n")
	for i, c := range counts {
		if i == topCountries {
			break
		}
		fmt.Fprintf(w, "  %s: %d exhibitors\n", c.country, c.count)
	}

	fmt.Fprintf(w, "\nSample exhibitors:\n")
	for i, e := range result.Exhibitors {
		if i == sampleRecords {
			break
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, e.Name)
		fmt.Fprintf(w, "     Stand: %s | Hall: %s\n", e.StandNumber, e.Hall)
		fmt.Fprintf(w, "     Country: %s | Sector: %s\n", e.Country, e.Sector)
	}
}
