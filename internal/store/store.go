// Package store executes generated SQL read-only against the review
// data store. Both the Postgres and the embedded DuckDB backend sit
// behind database/sql; callers never see driver specifics.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotReadOnly is returned for statements that are not plain
// SELECT/WITH queries. Generated SQL must never mutate the store.
var ErrNotReadOnly = errors.New("only read-only SELECT/WITH statements are allowed")

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
	// Truncated is set when the row cap cut the result short.
	Truncated bool
}

func (r Result) Empty() bool {
	return len(r.Rows) == 0
}

type Executor interface {
	Query(ctx context.Context, sqlText string) (Result, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
