// Package classify implements the deterministic bucket classifier: an
// ordered list of substring rules evaluated first-match-wins, with an
// explicit default bucket. Rule sets are configuration, not code; each
// report supplies its own keyword lists and bucket names.
package classify

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"spendcast/internal/core"
)

// Field selects which classification input a rule matches against.
type Field string

const (
	// FieldCategory matches the category label.
	FieldCategory Field = "category"
	// FieldProduct matches the product name.
	FieldProduct Field = "product"
	// FieldText matches product name and description combined.
	FieldText Field = "text"
)

// Rule assigns a bucket when any of its keywords occurs as a substring of
// the selected field.
type Rule struct {
	Field    Field
	Keywords []string
	Bucket   core.Bucket
}

// Classifier is a pure, total function from classification inputs to
// exactly one bucket. It holds no mutable state and is safe for
// concurrent use except when accent folding is enabled, in which case
// each goroutine needs its own instance (the folding transformer is
// stateful).
type Classifier struct {
	rules         []Rule
	defaultBucket core.Bucket
	unclassified  core.Bucket
	fold          transform.Transformer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAccentFolding normalizes inputs and keywords with NFKD and strips
// combining marks before matching, so "spécialité" matches "specialite".
func WithAccentFolding() Option {
	return func(c *Classifier) {
		c.fold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	}
}

// WithUnclassifiedBucket routes rows no rule matched to an explicit
// bucket instead of the default. Off by default: the shipped
// configurations keep the original fallback behavior.
func WithUnclassifiedBucket(b core.Bucket) Option {
	return func(c *Classifier) {
		c.unclassified = b
	}
}

// New builds a classifier from an ordered rule list and a default bucket.
func New(rules []Rule, defaultBucket core.Bucket, opts ...Option) (*Classifier, error) {
	if defaultBucket == "" {
		return nil, errors.New("default bucket cannot be empty")
	}

	c := &Classifier{defaultBucket: defaultBucket}
	for _, opt := range opts {
		opt(c)
	}

	for i, r := range rules {
		if r.Bucket == "" {
			return nil, fmt.Errorf("rule %d: bucket cannot be empty", i)
		}
		switch r.Field {
		case FieldCategory, FieldProduct, FieldText:
		default:
			return nil, fmt.Errorf("rule %d: unknown field %q", i, r.Field)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d: keyword list cannot be empty", i)
		}

		normalized := Rule{Field: r.Field, Bucket: r.Bucket}
		for _, kw := range r.Keywords {
			kw = c.normalize(kw)
			if kw != "" {
				normalized.Keywords = append(normalized.Keywords, kw)
			}
		}
		c.rules = append(c.rules, normalized)
	}
	return c, nil
}

// Classify maps the inputs to exactly one bucket. Absent inputs are
// treated as empty strings; the function never fails.
func (c *Classifier) Classify(category, product, description string) core.Bucket {
	category = c.normalize(category)
	product = c.normalize(product)
	text := strings.TrimSpace(product + " " + c.normalize(description))

	for _, r := range c.rules {
		var input string
		switch r.Field {
		case FieldCategory:
			input = category
		case FieldProduct:
			input = product
		case FieldText:
			input = text
		}
		for _, kw := range r.Keywords {
			if strings.Contains(input, kw) {
				return r.Bucket
			}
		}
	}

	if c.unclassified != "" {
		return c.unclassified
	}
	return c.defaultBucket
}

// Buckets returns every bucket the classifier can produce, default (or
// unclassified) last, without duplicates.
func (c *Classifier) Buckets() []core.Bucket {
	seen := map[core.Bucket]bool{}
	var out []core.Bucket
	for _, r := range c.rules {
		if !seen[r.Bucket] {
			seen[r.Bucket] = true
			out = append(out, r.Bucket)
		}
	}
	last := c.defaultBucket
	if c.unclassified != "" {
		last = c.unclassified
	}
	if !seen[last] {
		out = append(out, last)
	}
	return out
}

func (c *Classifier) normalize(s string) string {
	s = strings.ToLower(s)
	if c.fold != nil {
		if folded, _, err := transform.String(c.fold, s); err == nil {
			s = folded
		}
	}
	return s
}
