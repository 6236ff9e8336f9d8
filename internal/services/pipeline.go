// Package services orchestrates the report pipeline: source rows are
// normalized, classified and aggregated in one streaming pass, then the
// totals are written out as the report's JSON file.
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"spendcast/internal/aggregate"
	"spendcast/internal/config"
	"spendcast/internal/core"
	"spendcast/internal/log"
	"spendcast/internal/report"
	"spendcast/internal/source"
)

// Pipeline runs report definitions end to end. It is safe for
// concurrent Run calls: every run builds its own classifier, normalizer
// and totals, so report runs share nothing but configuration.
type Pipeline struct {
	cfg     *config.Config
	factory *source.Factory
	logger  *log.Logger
}

// RunResult summarizes one completed report run.
type RunResult struct {
	Report      string
	Rows        int // rows consumed from the source
	Dropped     int // rows rejected during normalization
	Records     int // aggregate records written
	OutputPath  string
	DetailsPath string // empty when the report has no details export
}

// NewPipeline creates a pipeline over the given configuration.
func NewPipeline(cfg *config.Config, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Pipeline{
		cfg:     cfg,
		factory: source.NewFactory(cfg, logger),
		logger:  logger.WithComponent(log.ComponentPipeline),
	}
}

// Run executes one report definition: query, normalize, classify,
// aggregate, emit. Malformed rows are counted and skipped; structural
// failures (bad query, unreadable graph, unwritable output) abort the
// run.
func (p *Pipeline) Run(ctx context.Context, def *report.Definition) (*RunResult, error) {
	start := time.Now()

	classifier, err := def.BuildClassifier()
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", def.Name, err)
	}
	normalizer := core.NewNormalizer(def.FieldMap())
	totals := aggregate.NewTotals()

	var details *aggregate.Details
	if def.Details != nil {
		amountHeader := def.Details.AmountColumn
		if amountHeader == "" {
			amountHeader = "amount_chf"
		}
		details = aggregate.NewDetails(def.Details.Columns, amountHeader)
	}

	src, err := p.factory.Create(def)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", def.Name, err)
	}
	stream, err := src.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", def.Name, err)
	}
	defer stream.Close()

	rows := 0
	for stream.Next() {
		rows++
		nr, ok := normalizer.Normalize(stream.Row())
		if !ok {
			continue
		}
		bucket := classifier.Classify(nr.Category, nr.Product, nr.Description)
		totals.Add(nr.Key(bucket), nr.Amount)
		if details != nil {
			details.Add(nr)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("report %s: %w", def.Name, err)
	}

	records := totals.Records()
	outputPath := filepath.Join(p.cfg.OutputDir, def.Output)
	if err := aggregate.WriteJSON(outputPath, records); err != nil {
		return nil, fmt.Errorf("report %s: %w", def.Name, err)
	}

	result := &RunResult{
		Report:     def.Name,
		Rows:       rows,
		Dropped:    normalizer.Dropped(),
		Records:    len(records),
		OutputPath: outputPath,
	}
	if details != nil {
		result.DetailsPath = filepath.Join(p.cfg.OutputDir, def.Details.Output)
		if err := details.Write(result.DetailsPath); err != nil {
			return nil, fmt.Errorf("report %s: %w", def.Name, err)
		}
	}

	p.logger.Info("Report complete",
		log.FieldReport, def.Name,
		log.FieldRows, result.Rows,
		log.FieldDropped, result.Dropped,
		log.FieldRecords, result.Records,
		log.FieldPath, result.OutputPath,
		log.FieldDuration, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// RunAll executes every definition concurrently and returns the results
// in definition order. The first failing report cancels the rest.
func (p *Pipeline) RunAll(ctx context.Context, defs []*report.Definition) ([]*RunResult, error) {
	results := make([]*RunResult, len(defs))
	g, ctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			res, err := p.Run(ctx, def)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
