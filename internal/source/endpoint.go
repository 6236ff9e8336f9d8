package source

import (
	"context"
	"time"

	"github.com/knakk/rdf"
	"github.com/knakk/sparql"

	"spendcast/internal/core"
	"spendcast/internal/log"
	"spendcast/internal/query"
)

// EndpointSource runs the query against a remote SPARQL repository over
// HTTP instead of a local graph file. The query file goes through the
// same leading-keyword check as the local path.
type EndpointSource struct {
	url       string
	timeout   time.Duration
	queryPath string
	logger    *log.Logger
}

// Rows submits the query and returns the materialized solutions as a
// single-pass stream. The endpoint's result set is finite and already
// fully transferred, so laziness here is only the consumption contract.
func (s *EndpointSource) Rows(ctx context.Context) (RowStream, error) {
	text, err := query.LoadFile(s.queryPath)
	if err != nil {
		return nil, err
	}

	repo, err := sparql.NewRepo(s.url, sparql.Timeout(s.timeout))
	if err != nil {
		return nil, &query.ExecutionError{Err: err}
	}

	s.logger.Info("Querying SPARQL endpoint", log.FieldEndpoint, s.url, log.FieldQueryFile, s.queryPath)
	res, err := repo.Query(text)
	if err != nil {
		return nil, &query.ExecutionError{Err: err}
	}

	return &endpointStream{ctx: ctx, solutions: res.Solutions()}, nil
}

type endpointStream struct {
	ctx       context.Context
	solutions []map[string]rdf.Term
	pos       int
	cur       core.ResultRow
}

func (s *endpointStream) Next() bool {
	if s.ctx.Err() != nil || s.pos >= len(s.solutions) {
		return false
	}
	s.cur = resultRow(s.solutions[s.pos])
	s.pos++
	return true
}

func (s *endpointStream) Row() core.ResultRow {
	return s.cur
}

func (s *endpointStream) Close() {
	s.pos = len(s.solutions)
}
