package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/use-agent/expograb/models"
)

// WriteJSON writes the exhibitors as an indented UTF-8 JSON array.
func WriteJSON(path string, exhibitors []models.Exhibitor) error {
	data, err := json.MarshalIndent(exhibitors, "", "  ")
	if err != nil {
		return fmt.Errorf("json: marshal: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("json: write %s: %w", path, err)
	}
	return nil
}
