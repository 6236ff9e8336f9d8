package query

import (
	"fmt"
	"os"
	"strings"
)

// leadingKeywords are accepted at the head of a query file.
var leadingKeywords = []string{"PREFIX", "SELECT", "CONSTRUCT", "ASK", "DESCRIBE"}

// LoadFile reads a query file and checks that it starts with a known
// query keyword, looking only at the first ten characters. This fails
// fast on files that are obviously not queries before the engine parses
// anything.
func LoadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read query file: %w", err)
	}
	text := strings.TrimSpace(string(b))

	head := text
	if len(head) > 10 {
		head = head[:10]
	}
	head = strings.ToUpper(head)

	for _, kw := range leadingKeywords {
		if strings.HasPrefix(head, kw) {
			return text, nil
		}
	}

	preview := text
	if len(preview) > 80 {
		preview = preview[:80]
	}
	return "", &FormatError{Path: path, Preview: preview}
}
