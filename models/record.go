package models

// Exhibitor is one listing entry scraped from the exhibition table.
// Name is the only required field; records with an empty name are
// discarded before they ever reach a RunResult.
type Exhibitor struct {
	Name             string `json:"exhibitor_name"`
	StandNumber      string `json:"stand_no"`
	Country          string `json:"country"`
	Sector           string `json:"sector"`
	BusinessActivity string `json:"business_activity"`
	Hall             string `json:"hall"`
}

// CSVHeader is the fixed column order for file output.
var CSVHeader = []string{
	"Exhibitor Name", "Stand No", "Country", "Sector", "Business Activity", "Hall",
}

// CSVRow returns the exhibitor's fields in CSVHeader order.
func (e Exhibitor) CSVRow() []string {
	return []string{e.Name, e.StandNumber, e.Country, e.Sector, e.BusinessActivity, e.Hall}
}

// RunStatus describes how a scrape run ended.
type RunStatus string

const (
	// StatusExhausted means every computed page was visited.
	StatusExhausted RunStatus = "exhausted"

	// StatusAborted means the run stopped early after the consecutive
	// page-failure threshold was reached. Partial results are still valid.
	StatusAborted RunStatus = "aborted"

	// StatusFailed means the run never got going (browser could not be
	// acquired, initial navigation failed). The result carries no records.
	StatusFailed RunStatus = "failed"
)

// RunResult is the immutable outcome of one scrape run.
type RunResult struct {
	Exhibitors   []Exhibitor `json:"exhibitors"`
	TotalPages   int         `json:"total_pages"`
	PagesScraped int         `json:"pages_scraped"`
	Status       RunStatus   `json:"status"`

	// Failures counts the pages that yielded zero records from every
	// acquisition path (not necessarily consecutive).
	Failures int `json:"failures"`

	// Snapshots holds the raw table-body HTML captured per scraped page,
	// in page order, for the optional archive writer. Empty entries mark
	// pages where the primary extraction path found no table.
	Snapshots []string `json:"-"`
}

// CountryCounts returns exhibitor frequency per country, used by the
// run summary reporter.
func (r *RunResult) CountryCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Exhibitors {
		country := e.Country
		if country == "" {
			country = "Unknown"
		}
		counts[country]++
	}
	return counts
}
