// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package audit records every answered question in the logs_perguntas
// table. Recording is best-effort: a failed insert is logged and
// otherwise ignored so auditing can never break the answer path.
package audit

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recordResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sophos",
	Subsystem: "audit",
	Name:      "records_total",
	Help:      "Audit insert attempts by result (ok, failed).",
}, []string{"result"})

const insertSQL = `
	INSERT INTO logs_perguntas (pergunta, sql_gerada, resposta, sucesso)
	VALUES ($1, $2, $3, $4);
`

// Execer runs a parameterized statement. pgxpool.Pool satisfies this
// through a small adapter; tests supply fakes.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) error
}

// Logger writes audit records.
//
// Description:
//
//	A nil *Logger is valid and records nothing, which keeps wiring
//	simple for tests and for console runs without a database.
//
// Thread Safety: Safe for concurrent use.
type Logger struct {
	db Execer
}

// NewLogger returns a Logger writing through db.
func NewLogger(db Execer) *Logger {
	return &Logger{db: db}
}

// Record inserts one audit row.
//
// Inputs:
//
//	question - The user question, verbatim.
//	sqls - The executed SQL texts joined with ";\n", or nil when no
//	       query matched; stored as NULL.
//	answer - The text returned to the user.
//	success - The all-or-nothing SQL success flag.
func (l *Logger) Record(ctx context.Context, question string, sqls *string, answer string, success bool) {
	if l == nil || l.db == nil {
		return
	}
	if err := l.db.Exec(ctx, insertSQL, question, sqls, answer, success); err != nil {
		recordResults.WithLabelValues("failed").Inc()
		slog.Error("audit insert failed", slog.Any("error", err))
		return
	}
	recordResults.WithLabelValues("ok").Inc()
}
