package aggregate

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"spendcast/internal/core"
)

// Details collects optional per-row detail records for reports that also
// export a CSV next to the JSON summary. Columns name raw query
// variables; the formatted amount is appended as the last column.
type Details struct {
	columns      []string
	amountHeader string
	rows         [][]string
}

// NewDetails creates a collector for the given raw columns. amountHeader
// names the trailing amount column (e.g. "line_subtotal_chf").
func NewDetails(columns []string, amountHeader string) *Details {
	return &Details{columns: columns, amountHeader: amountHeader}
}

// Add records one normalized row's detail line.
func (d *Details) Add(row core.NormalizedRow) {
	rec := make([]string, 0, len(d.columns)+1)
	for _, col := range d.columns {
		rec = append(rec, row.Raw[col])
	}
	rec = append(rec, fmt.Sprintf("%.2f", row.Amount))
	d.rows = append(d.rows, rec)
}

// Len returns the number of collected detail lines.
func (d *Details) Len() int {
	return len(d.rows)
}

// Write emits the detail CSV with a header row, overwriting any prior
// file.
func (d *Details) Write(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create details file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, d.columns...), d.amountHeader)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write details header: %w", err)
	}
	for _, rec := range d.rows {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write details row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush details file: %w", err)
	}
	return nil
}
