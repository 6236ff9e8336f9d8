// Package report loads the TOML report definitions that configure the
// extraction engine: which query to run, how result variables map to
// normalizer fields, the classifier rule set and where output goes. Each
// sibling report (healthy, coffee, transport, ...) is one definition
// file, so new buckets and keyword lists are data changes, not code
// changes.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"spendcast/internal/classify"
	"spendcast/internal/core"
)

// Row sources a report can read from.
const (
	SourceFile     = "file"     // local Turtle graph + local query engine
	SourceEndpoint = "endpoint" // remote SPARQL endpoint
)

// Definition is one report configuration.
type Definition struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Query       string `toml:"query"`  // query file name, relative to the queries dir
	Output      string `toml:"output"` // JSON output file name, relative to the output dir
	Source      string `toml:"source"` // "file" (default) or "endpoint"

	Variables  Variables        `toml:"variables"`
	Classifier ClassifierConfig `toml:"classifier"`
	Details    *DetailsConfig   `toml:"details"`

	dir string // directory the definition was loaded from
}

// Variables maps normalizer fields to query variable names.
type Variables struct {
	Date        string `toml:"date"`
	Amount      string `toml:"amount"`
	Category    string `toml:"category"`
	Product     string `toml:"product"`
	Description string `toml:"description"`
}

// ClassifierConfig holds the ordered rule set and bucket names.
type ClassifierConfig struct {
	Default      string       `toml:"default"`
	Unclassified string       `toml:"unclassified"`
	FoldAccents  bool         `toml:"fold_accents"`
	Rules        []RuleConfig `toml:"rules"`
}

// RuleConfig is one (field, keywords, bucket) rule. Keywords may be
// inline, loaded from a one-column CSV file, or both.
type RuleConfig struct {
	Field        string   `toml:"field"`
	Bucket       string   `toml:"bucket"`
	Keywords     []string `toml:"keywords"`
	KeywordsFile string   `toml:"keywords_file"`
}

// DetailsConfig enables the optional per-row CSV export.
type DetailsConfig struct {
	Output       string   `toml:"output"`
	Columns      []string `toml:"columns"`
	AmountColumn string   `toml:"amount_column"`
}

// LoadDefinition reads and validates one report definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report definition: %w", err)
	}

	var def Definition
	if err := toml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse report definition %s: %w", path, err)
	}
	def.dir = filepath.Dir(path)

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report definition %s: %w", path, err)
	}
	return &def, nil
}

// LoadDir loads every *.toml definition in a directory, sorted by name.
func LoadDir(dir string) ([]*Definition, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no report definitions found in %s", dir)
	}
	sort.Strings(matches)

	defs := make([]*Definition, 0, len(matches))
	for _, path := range matches {
		def, err := LoadDefinition(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Validate checks the definition, collecting all problems into one error.
func (d *Definition) Validate() error {
	var errors []string

	if strings.TrimSpace(d.Name) == "" {
		errors = append(errors, "name is required")
	}
	if strings.TrimSpace(d.Query) == "" {
		errors = append(errors, "query file is required")
	}
	if strings.TrimSpace(d.Output) == "" {
		errors = append(errors, "output file is required")
	}

	switch d.Source {
	case "", SourceFile, SourceEndpoint:
	default:
		errors = append(errors, fmt.Sprintf("invalid source %q: must be %q or %q", d.Source, SourceFile, SourceEndpoint))
	}

	if strings.TrimSpace(d.Variables.Date) == "" {
		errors = append(errors, "variables.date is required")
	}
	if strings.TrimSpace(d.Variables.Amount) == "" {
		errors = append(errors, "variables.amount is required")
	}

	if strings.TrimSpace(d.Classifier.Default) == "" {
		errors = append(errors, "classifier.default is required")
	}
	for i, r := range d.Classifier.Rules {
		if strings.TrimSpace(r.Bucket) == "" {
			errors = append(errors, fmt.Sprintf("classifier.rules[%d]: bucket is required", i))
		}
		if len(r.Keywords) == 0 && strings.TrimSpace(r.KeywordsFile) == "" {
			errors = append(errors, fmt.Sprintf("classifier.rules[%d]: keywords or keywords_file is required", i))
		}
	}

	if d.Details != nil {
		if strings.TrimSpace(d.Details.Output) == "" {
			errors = append(errors, "details.output is required when details are enabled")
		}
		if len(d.Details.Columns) == 0 {
			errors = append(errors, "details.columns is required when details are enabled")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// SourceOrDefault returns the configured row source, defaulting to the
// local file source.
func (d *Definition) SourceOrDefault() string {
	if d.Source == "" {
		return SourceFile
	}
	return d.Source
}

// FieldMap converts the variable mapping for the normalizer.
func (d *Definition) FieldMap() core.FieldMap {
	return core.FieldMap{
		Date:        d.Variables.Date,
		Amount:      d.Variables.Amount,
		Category:    d.Variables.Category,
		Product:     d.Variables.Product,
		Description: d.Variables.Description,
	}
}

// BuildClassifier constructs the classifier from the rule set, resolving
// keyword files relative to the definition's directory.
func (d *Definition) BuildClassifier() (*classify.Classifier, error) {
	rules := make([]classify.Rule, 0, len(d.Classifier.Rules))
	for i, rc := range d.Classifier.Rules {
		rule := classify.Rule{
			Field:    classify.Field(rc.Field),
			Bucket:   core.Bucket(rc.Bucket),
			Keywords: append([]string{}, rc.Keywords...),
		}
		if rc.KeywordsFile != "" {
			path := rc.KeywordsFile
			if !filepath.IsAbs(path) {
				path = filepath.Join(d.dir, path)
			}
			extra, err := classify.LoadKeywordsCSV(path)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			rule.Keywords = append(rule.Keywords, extra...)
		}
		rules = append(rules, rule)
	}

	var opts []classify.Option
	if d.Classifier.FoldAccents {
		opts = append(opts, classify.WithAccentFolding())
	}
	if d.Classifier.Unclassified != "" {
		opts = append(opts, classify.WithUnclassifiedBucket(core.Bucket(d.Classifier.Unclassified)))
	}
	return classify.New(rules, core.Bucket(d.Classifier.Default), opts...)
}
