// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package executor runs resolved SQL queries against Postgres and
// aggregates per-query outcomes into the text block handed to the
// language model.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sophos",
		Subsystem: "executor",
		Name:      "query_duration_seconds",
		Help:      "Time spent executing a single SQL query.",
		Buckets:   prometheus.DefBuckets,
	})

	queryResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sophos",
		Subsystem: "executor",
		Name:      "queries_total",
		Help:      "Query executions by result (ok, empty, failed).",
	}, []string{"result"})
)

// QueryExecutor executes a single read query and returns its rows as
// generic values.
type QueryExecutor interface {
	Query(ctx context.Context, sql string) ([][]any, error)
}

// PgxExecutor executes queries on a pgx connection pool.
//
// Thread Safety: Safe for concurrent use; the pool serializes access.
type PgxExecutor struct {
	pool *pgxpool.Pool
}

// NewPgxExecutor returns an executor backed by the given pool.
func NewPgxExecutor(pool *pgxpool.Pool) *PgxExecutor {
	return &PgxExecutor{pool: pool}
}

// Query implements QueryExecutor.
//
// Description:
//
//	Acquires a connection, runs the query, and materializes every row
//	via rows.Values(). Any error, including mid-iteration failure,
//	discards partial results.
func (e *PgxExecutor) Query(ctx context.Context, sql string) ([][]any, error) {
	start := time.Now()
	defer func() {
		queryDuration.Observe(time.Since(start).Seconds())
	}()

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		queryResults.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql)
	if err != nil {
		queryResults.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			queryResults.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("reading row: %w", err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		queryResults.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	if len(out) == 0 {
		queryResults.WithLabelValues("empty").Inc()
	} else {
		queryResults.WithLabelValues("ok").Inc()
	}
	return out, nil
}
