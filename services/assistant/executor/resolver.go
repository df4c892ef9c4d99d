// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stolf-ltda/sophos/services/assistant/catalog"
	"github.com/stolf-ltda/sophos/services/assistant/matching"
)

// Status classifies the execution of one matched query.
type Status int

const (
	// StatusOK means the query ran and returned at least one row.
	StatusOK Status = iota

	// StatusEmpty means the query ran and returned zero rows.
	StatusEmpty

	// StatusFailed means the query could not be executed.
	StatusFailed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the execution record of one matched query.
type Outcome struct {
	Label  string
	SQL    string
	Rows   [][]any
	Status Status
}

// Result aggregates the outcomes for one question.
//
// Description:
//
//	Info and QueriesUsed are nil when no query matched at all, which the
//	prompt layer renders differently from matched-but-empty results.
type Result struct {
	// Info is the formatted data block for the language model.
	Info *string

	// QueriesUsed is every executed SQL text joined with ";\n".
	QueriesUsed *string

	// Success reports the all-or-nothing success of the executed queries.
	Success bool

	// Outcomes holds the per-query execution records in match order.
	Outcomes []Outcome
}

// Resolver matches a question and executes the matched queries.
//
// Thread Safety: Safe for concurrent use.
type Resolver struct {
	matcher *matching.Matcher
	exec    QueryExecutor
}

// NewResolver wires a matcher to a query executor.
func NewResolver(m *matching.Matcher, exec QueryExecutor) *Resolver {
	return &Resolver{matcher: m, exec: exec}
}

// ResolveAndExecute resolves a question to queries and runs them all.
//
// Description:
//
//	Every matched query is executed in order regardless of earlier
//	failures. A query whose SQL still carries unresolved placeholders is
//	marked failed without touching the database; the matcher is not
//	supposed to emit such SQL, so this is logged as a programming error.
//	The Info block contains one "Resultados (<label>):" section per
//	match even when the query failed or returned nothing.
func (r *Resolver) ResolveAndExecute(ctx context.Context, question string) Result {
	matches := r.matcher.Resolve(ctx, question)
	if len(matches) == 0 {
		return Result{}
	}

	sqls := make([]string, 0, len(matches))
	for _, m := range matches {
		sqls = append(sqls, m.SQL)
	}
	queriesUsed := strings.Join(sqls, ";\n")

	var info strings.Builder
	outcomes := make([]Outcome, 0, len(matches))
	for _, m := range matches {
		outcome := r.executeOne(ctx, m)
		outcomes = append(outcomes, outcome)
		fmt.Fprintf(&info, "Resultados (%s):\n%s\n", outcome.Label, FormatRows(outcome.Rows))
	}

	infoText := info.String()
	return Result{
		Info:        &infoText,
		QueriesUsed: &queriesUsed,
		Success:     AllOrNothingSuccess(outcomes),
		Outcomes:    outcomes,
	}
}

func (r *Resolver) executeOne(ctx context.Context, m matching.Match) Outcome {
	outcome := Outcome{Label: m.Label, SQL: m.SQL}

	if catalog.HasUnresolvedPlaceholders(m.SQL) {
		slog.Error("matched SQL still contains placeholders, refusing to execute",
			slog.String("label", m.Label),
		)
		outcome.Status = StatusFailed
		return outcome
	}

	slog.Info("executing matched query", slog.String("label", m.Label), slog.String("sql", m.SQL))
	rows, err := r.exec.Query(ctx, m.SQL)
	switch {
	case err != nil:
		slog.Error("query execution failed",
			slog.String("label", m.Label),
			slog.Any("error", err),
		)
		outcome.Status = StatusFailed
	case len(rows) == 0:
		outcome.Status = StatusEmpty
	default:
		outcome.Rows = rows
		outcome.Status = StatusOK
	}
	return outcome
}

// AllOrNothingSuccess reports success only when at least one query
// returned rows and none failed or came back empty.
func AllOrNothingSuccess(outcomes []Outcome) bool {
	anyOK := false
	for _, o := range outcomes {
		switch o.Status {
		case StatusOK:
			anyOK = true
		default:
			return false
		}
	}
	return anyOK
}
