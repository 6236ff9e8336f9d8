package aggregate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spendcast/internal/core"
)

// WriteJSON writes the records as a pretty-printed UTF-8 JSON array,
// creating the output directory if absent and overwriting any prior file
// unconditionally. The file is written in one shot so a failed run never
// leaves a partial output behind.
func WriteJSON(path string, records []core.AggregateRecord) error {
	if records == nil {
		records = []core.AggregateRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
