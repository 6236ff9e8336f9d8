package core

import (
	"fmt"
	"strings"
	"time"
)

// MonthInfo derives the UTC month key and English month name from a date
// literal.
//
// The full value is parsed first (RFC 3339 date-times); if that fails and
// the value is at least ten characters long, the first ten characters are
// retried as a date-only YYYY-MM-DD prefix, ignoring any time or zone
// suffix. Month bucketing is pinned to UTC so dates near month boundaries
// in other timezones land in the month of their UTC instant.
func MonthInfo(value string) (isoMonth, monthName string, err error) {
	value = strings.TrimSpace(value)

	t, perr := time.Parse(time.RFC3339, value)
	if perr != nil {
		if len(value) < 10 {
			return "", "", ErrInvalidDate
		}
		t, perr = time.Parse("2006-01-02", value[:10])
		if perr != nil {
			return "", "", ErrInvalidDate
		}
	}

	t = t.UTC()
	isoMonth = fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	monthName = t.Month().String()
	return isoMonth, monthName, nil
}
