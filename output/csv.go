package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/use-agent/expograb/models"
)

// WriteCSV writes the exhibitors to a UTF-8 CSV file with a header row,
// columns in the fixed export order.
func WriteCSV(path string, exhibitors []models.Exhibitor) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.CSVHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, e := range exhibitors {
		if err := w.Write(e.CSVRow()); err != nil {
			return fmt.Errorf("csv: write row for %q: %w", e.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}
