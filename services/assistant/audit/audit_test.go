// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeExecer struct {
	sql  string
	args []any
	err  error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) error {
	f.sql = sql
	f.args = args
	return f.err
}

func TestRecordInsertsRow(t *testing.T) {
	db := &fakeExecer{}
	l := NewLogger(db)

	sqls := "SELECT COUNT(*) FROM funcionarios;"
	l.Record(context.Background(), "Quantos funcionários temos?", &sqls, "Temos 42 funcionários.", true)

	if !strings.Contains(db.sql, "INSERT INTO logs_perguntas") {
		t.Errorf("unexpected statement: %q", db.sql)
	}
	if len(db.args) != 4 {
		t.Fatalf("got %d args, want 4", len(db.args))
	}
	if db.args[0] != "Quantos funcionários temos?" || db.args[3] != true {
		t.Errorf("args = %v", db.args)
	}
}

func TestRecordNilSQLs(t *testing.T) {
	db := &fakeExecer{}
	l := NewLogger(db)

	l.Record(context.Background(), "pergunta livre", nil, "resposta", false)

	if got, ok := db.args[1].(*string); !ok || got != nil {
		t.Errorf("sqls arg = %v, want nil *string", db.args[1])
	}
}

func TestRecordFailureIsSwallowed(t *testing.T) {
	db := &fakeExecer{err: errors.New("connection reset")}
	l := NewLogger(db)

	// Must not panic or propagate.
	l.Record(context.Background(), "pergunta", nil, "resposta", false)
}

func TestRecordNilLogger(t *testing.T) {
	var l *Logger
	l.Record(context.Background(), "pergunta", nil, "resposta", true)
}
