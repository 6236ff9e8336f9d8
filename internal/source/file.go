package source

import (
	"context"

	"spendcast/internal/core"
	"spendcast/internal/graph"
	"spendcast/internal/log"
	"spendcast/internal/query"
)

// FileSource loads a Turtle graph into memory and evaluates the query
// in-process. The store lives for one run: load once, query once,
// discard.
type FileSource struct {
	graphPath string
	queryPath string
	logger    *log.Logger
}

// Rows loads the graph and starts the query. All structural failures
// (missing files, bad Turtle, rejected query) surface here, before any
// row is produced.
func (s *FileSource) Rows(ctx context.Context) (RowStream, error) {
	text, err := query.LoadFile(s.queryPath)
	if err != nil {
		return nil, err
	}
	q, err := query.Parse(text)
	if err != nil {
		return nil, err
	}

	store, err := graph.Load(s.graphPath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded graph", log.FieldPath, s.graphPath, log.FieldTriples, store.Len())

	return &fileStream{rows: q.Run(ctx, store)}, nil
}

type fileStream struct {
	rows *query.Rows
}

func (s *fileStream) Next() bool {
	return s.rows.Next()
}

func (s *fileStream) Row() core.ResultRow {
	return resultRow(s.rows.Solution())
}

func (s *fileStream) Close() {
	s.rows.Close()
}
