package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output file names within the report directory.
const (
	TradesCSVFile    = "trade_records.csv"
	UnmatchedCSVFile = "unmatched_records.csv"
	PerImageCSVFile  = "per_image_report.csv"
	MarkdownFile     = "ANALYSIS_REPORT.md"
	JSONFile         = "analysis_report.json"
)

// WriteBundle renders every output format into dir, creating it if
// needed. Files are overwritten on rerun.
func WriteBundle(r *Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	files := map[string][]byte{
		TradesCSVFile:    []byte(RenderTradesCSV(r.Trades)),
		UnmatchedCSVFile: []byte(RenderUnmatchedCSV(r.Unmatched)),
		PerImageCSVFile:  []byte(RenderPerImageCSV(r.PerImage)),
		MarkdownFile:     []byte(RenderMarkdown(r)),
	}

	jsonData, err := RenderJSON(r)
	if err != nil {
		return err
	}
	files[JSONFile] = jsonData

	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return nil
}
