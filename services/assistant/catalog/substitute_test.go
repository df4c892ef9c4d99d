// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"errors"
	"testing"
)

func TestHasUnresolvedPlaceholders(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT COUNT(*) FROM funcionarios;", false},
		{"SELECT * FROM clientes WHERE id = {id};", true},
		{"SELECT * FROM vendas WHERE data_venda BETWEEN '{start_date}' AND '{end_date}';", true},
		{"SELECT '{not a placeholder'", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := HasUnresolvedPlaceholders(tt.sql); got != tt.want {
			t.Errorf("HasUnresolvedPlaceholders(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	names := Placeholders("SELECT * FROM vendas WHERE data_venda BETWEEN '{start_date}' AND '{end_date}' OR id = {start_date};")
	if len(names) != 2 {
		t.Fatalf("Placeholders() = %v, want 2 unique names", names)
	}
	if names[0] != "start_date" || names[1] != "end_date" {
		t.Errorf("Placeholders() = %v, want [start_date end_date]", names)
	}

	if got := Placeholders("SELECT 1;"); got != nil {
		t.Errorf("Placeholders() on plain SQL = %v, want nil", got)
	}
}

func TestSubstituteResolvesAllPlaceholders(t *testing.T) {
	sql, err := Substitute(
		"SELECT nome FROM funcionarios WHERE id = {id};",
		map[string]string{"id": "7"},
	)
	if err != nil {
		t.Fatalf("Substitute() returned error: %v", err)
	}
	want := "SELECT nome FROM funcionarios WHERE id = 7;"
	if sql != want {
		t.Errorf("Substitute() = %q, want %q", sql, want)
	}
}

func TestSubstituteMissingParam(t *testing.T) {
	_, err := Substitute(
		"SELECT * FROM vendas WHERE data_venda BETWEEN '{start_date}' AND '{end_date}';",
		map[string]string{"start_date": "2025-01-01"},
	)
	if err == nil {
		t.Fatal("Substitute() accepted missing parameter")
	}
	if !errors.Is(err, ErrUnresolvedPlaceholder) {
		t.Errorf("error = %v, want ErrUnresolvedPlaceholder", err)
	}
}

func TestSubstituteUnknownParam(t *testing.T) {
	_, err := Substitute(
		"SELECT nome FROM funcionarios WHERE id = {id};",
		map[string]string{"id": "7", "nome": "Ana"},
	)
	if err == nil {
		t.Fatal("Substitute() accepted unknown parameter")
	}
}

func TestSubstituteRejectsPlaceholderValues(t *testing.T) {
	_, err := Substitute(
		"SELECT nome FROM funcionarios WHERE id = {id};",
		map[string]string{"id": "{other}"},
	)
	if !errors.Is(err, ErrUnresolvedPlaceholder) {
		t.Errorf("error = %v, want ErrUnresolvedPlaceholder", err)
	}
}
