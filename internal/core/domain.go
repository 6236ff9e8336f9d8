package core

import "errors"

type (
	// Bucket is the semantic classification label assigned to a spending
	// line item (e.g. "healthy", "unhealthy", "Swiss-made").
	Bucket string

	// ResultRow holds the raw string bindings of one query solution,
	// keyed by variable name. Unbound variables are absent.
	ResultRow map[string]string

	// FieldMap names the query variables the normalizer reads.
	// Date and Amount are required; the rest feed classification and
	// detail export and may be empty.
	FieldMap struct {
		Date        string
		Amount      string
		Category    string
		Product     string
		Description string
	}

	// NormalizedRow is a ResultRow with typed month and amount plus the
	// text fields needed for classification.
	NormalizedRow struct {
		ISOMonth    string // YYYY-MM, UTC
		MonthName   string // English full month name, UTC
		Amount      float64
		Category    string
		Product     string
		Description string
		Raw         ResultRow
	}

	// AggregateKey identifies one output record.
	AggregateKey struct {
		ISOMonth  string
		MonthName string
		Bucket    Bucket
	}

	// AggregateRecord is the persisted output unit.
	AggregateRecord struct {
		Category string `json:"category"`
		Month    string `json:"month"`
		MonthISO string `json:"monthISO"`
		Amount   string `json:"amount"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// Key returns the aggregate key for a classified row.
func (r NormalizedRow) Key(bucket Bucket) AggregateKey {
	return AggregateKey{ISOMonth: r.ISOMonth, MonthName: r.MonthName, Bucket: bucket}
}
