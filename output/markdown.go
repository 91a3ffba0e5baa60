package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter creates a reusable, goroutine-safe Converter for
// rendering captured table snapshots:
//
//   - base plugin: strips script, style and other non-content noise;
//   - commonmark plugin: standard Markdown rendering;
//   - table plugin: preserves the table structure, which is the whole
//     point of the snapshot, with minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// WriteSnapshots archives the per-page table markup captured during a
// run as Markdown files (page-001.md, page-002.md, …) under dir. Pages
// where the primary extraction never saw a table are skipped. The
// archive exists for auditing: when the site's markup drifts and the
// selectors stop matching, these files show what the scraper saw.
func WriteSnapshots(dir string, snapshots []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshots: create %s: %w", dir, err)
	}

	conv := newMarkdownConverter()
	for i, fragment := range snapshots {
		if fragment == "" {
			continue
		}
		md, err := conv.ConvertString("<table>" + fragment + "</table>")
		if err != nil {
			return fmt.Errorf("snapshots: convert page %d: %w", i+1, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.md", i+1))
		if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
			return fmt.Errorf("snapshots: write %s: %w", path, err)
		}
	}
	return nil
}
