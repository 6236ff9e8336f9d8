package classify

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadKeywordsCSV reads a one-column CSV of keywords (e.g. the Swiss
// brand list). A leading "brand"/"brands"/"keyword" header row is
// tolerated and skipped. Empty cells are ignored.
func LoadKeywordsCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyword file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read keyword file %s: %w", path, err)
	}

	var out []string
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		cell := strings.TrimSpace(rec[0])
		if cell == "" {
			continue
		}
		if i == 0 {
			switch strings.ToLower(cell) {
			case "brand", "brands", "keyword", "keywords":
				continue
			}
		}
		out = append(out, cell)
	}
	return out, nil
}
