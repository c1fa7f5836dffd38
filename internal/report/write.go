package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
)

// File names written by Write.
const (
	CSVFile  = "reportQuery.csv"
	JSONFile = "report.json"
)

// Write stores the per-airport table as CSV and the full report as JSON
// under dir, creating it if needed.
func Write(dir string, r Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	if err := writeCSV(filepath.Join(dir, CSVFile), r.Airports); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, JSONFile), data, 0o644); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	return nil
}

// writeCSV writes one row per airport; the header is written even when
// there are no rows.
func writeCSV(path string, rows []AirportRow) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	if err := enc.EncodeHeader(AirportRow{}); err != nil {
		return fmt.Errorf("encode report csv header: %w", err)
	}
	if len(rows) > 0 {
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("encode report csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode report csv: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report csv: %w", err)
	}
	return nil
}
