package core

// Normalizer converts raw result rows into normalized rows, dropping rows
// whose date or amount cannot be parsed. Drops are deliberate best-effort
// behavior: a single bad record must not abort the aggregation. The
// normalizer keeps a count of dropped rows so runs can surface data-quality
// problems in their completion summary.
type Normalizer struct {
	fields  FieldMap
	dropped int
}

// NewNormalizer creates a normalizer reading the given query variables.
func NewNormalizer(fields FieldMap) *Normalizer {
	return &Normalizer{fields: fields}
}

// Normalize maps one raw row to a normalized row. The second return value
// is false when the row is unusable (missing or unparseable date or
// amount); such rows are counted and skipped, never escalated.
func (n *Normalizer) Normalize(row ResultRow) (NormalizedRow, bool) {
	dateVal, dateOK := row[n.fields.Date]
	amountVal, amountOK := row[n.fields.Amount]
	if !dateOK || !amountOK {
		n.dropped++
		return NormalizedRow{}, false
	}

	amount, err := ParseAmount(amountVal)
	if err != nil {
		n.dropped++
		return NormalizedRow{}, false
	}

	isoMonth, monthName, err := MonthInfo(dateVal)
	if err != nil {
		n.dropped++
		return NormalizedRow{}, false
	}

	return NormalizedRow{
		ISOMonth:    isoMonth,
		MonthName:   monthName,
		Amount:      amount,
		Category:    row[n.fields.Category],
		Product:     row[n.fields.Product],
		Description: row[n.fields.Description],
		Raw:         row,
	}, true
}

// Dropped returns the number of rows rejected so far.
func (n *Normalizer) Dropped() int {
	return n.dropped
}
