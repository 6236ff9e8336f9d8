// Package aggregate folds classified rows into per-(month, bucket)
// monetary totals and emits them as stable, sorted output records.
package aggregate

import (
	"fmt"
	"sort"

	"spendcast/internal/core"
)

// Totals is the running per-key sum map. It is owned by a single
// aggregation pass; the full input stream is consumed before any output
// is finalized.
type Totals struct {
	sums map[core.AggregateKey]float64
}

// NewTotals creates an empty totals map.
func NewTotals() *Totals {
	return &Totals{sums: make(map[core.AggregateKey]float64)}
}

// Add merges one amount into the key's running total. Unseen keys start
// at zero. Addition is commutative, so the final totals do not depend on
// row order.
func (t *Totals) Add(key core.AggregateKey, amount float64) {
	t.sums[key] += amount
}

// Len returns the number of distinct keys accumulated.
func (t *Totals) Len() int {
	return len(t.sums)
}

// Sum returns the current total for a key.
func (t *Totals) Sum(key core.AggregateKey) float64 {
	return t.sums[key]
}

// Records finalizes the totals into output records, sorted by the
// lexicographic order of isoMonth, monthName, bucket: chronological by
// month, then alphabetical by bucket within a month. The ordering is
// stable and reproducible across runs for identical input.
func (t *Totals) Records() []core.AggregateRecord {
	keys := make([]core.AggregateKey, 0, len(t.sums))
	for k := range t.sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ISOMonth != b.ISOMonth {
			return a.ISOMonth < b.ISOMonth
		}
		if a.MonthName != b.MonthName {
			return a.MonthName < b.MonthName
		}
		return a.Bucket < b.Bucket
	})

	records := make([]core.AggregateRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, core.AggregateRecord{
			Category: string(k.Bucket),
			Month:    k.MonthName,
			MonthISO: k.ISOMonth,
			Amount:   FormatCHF(t.sums[k]),
		})
	}
	return records
}

// FormatCHF renders an amount as "CHF X.YY" with exactly two decimals.
// Go's %.2f rounds half to even.
func FormatCHF(v float64) string {
	return fmt.Sprintf("CHF %.2f", v)
}
