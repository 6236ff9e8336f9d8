// Package source provides the row sources a report can read from: a
// local Turtle graph queried in-process, or a remote SPARQL endpoint.
// The factory mirrors how the application picks a data backend from
// configuration; the pipeline only ever sees the RowStream contract.
package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/knakk/rdf"

	"spendcast/internal/config"
	"spendcast/internal/core"
	"spendcast/internal/log"
	"spendcast/internal/report"
)

// RowStream is a lazy, single-pass, finite sequence of result rows.
// Each row is consumed exactly once; restarting requires re-issuing the
// query through the source.
type RowStream interface {
	Next() bool
	Row() core.ResultRow
	Close()
}

// Source runs a report's query and yields its rows.
type Source interface {
	Rows(ctx context.Context) (RowStream, error)
}

// Factory builds the row source a report definition asks for.
type Factory struct {
	cfg    *config.Config
	logger *log.Logger
}

// NewFactory creates a source factory.
func NewFactory(cfg *config.Config, logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{cfg: cfg, logger: logger}
}

// Create returns the source for one report definition.
func (f *Factory) Create(def *report.Definition) (Source, error) {
	queryPath := filepath.Join(f.cfg.QueriesDir, def.Query)

	switch def.SourceOrDefault() {
	case report.SourceFile:
		return &FileSource{
			graphPath: f.cfg.GraphPath,
			queryPath: queryPath,
			logger:    f.logger.WithComponent(log.ComponentLoader),
		}, nil
	case report.SourceEndpoint:
		return &EndpointSource{
			url:       f.cfg.EndpointURL,
			timeout:   f.cfg.EndpointTimeout,
			queryPath: queryPath,
			logger:    f.logger.WithComponent(log.ComponentEndpoint),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported row source: %s", def.Source)
	}
}

// resultRow flattens term bindings to their lexical values: literals
// yield their value, IRIs and blanks their identifier.
func resultRow(sol map[string]rdf.Term) core.ResultRow {
	row := make(core.ResultRow, len(sol))
	for name, term := range sol {
		row[name] = term.String()
	}
	return row
}
