// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"strings"
	"testing"
)

func TestGetLoadsEmbeddedCatalog(t *testing.T) {
	Reset()
	defer Reset()

	c, err := Get()
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("embedded catalog has no entries")
	}

	// Second call must return the same instance.
	c2, err := Get()
	if err != nil {
		t.Fatalf("second Get() returned error: %v", err)
	}
	if c != c2 {
		t.Error("Get() did not return cached catalog")
	}
}

func TestEmbeddedCatalogRequiredEntries(t *testing.T) {
	Reset()
	defer Reset()

	c, err := Get()
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}

	tests := []struct {
		label        string
		wantTriggers []string
		wantSQL      []string
	}{
		{
			label:        "funcionarios-total",
			wantTriggers: []string{"quantos funcionários", "total funcionários", "número de funcionários"},
			wantSQL:      []string{"SELECT COUNT(*)", "funcionarios"},
		},
		{
			label:        "salario-medio",
			wantTriggers: []string{"salário médio", "média salarial"},
			wantSQL:      []string{"AVG(", "salario"},
		},
		{
			label:        "projetos-por-status",
			wantTriggers: []string{"projetos por status", "quantos projetos por status"},
			wantSQL:      []string{"GROUP BY status", "projetos"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			e, ok := c.Lookup(tt.label)
			if !ok {
				t.Fatalf("catalog missing entry %q", tt.label)
			}
			for _, trig := range tt.wantTriggers {
				if !containsString(e.Triggers, trig) {
					t.Errorf("entry %q missing trigger %q", tt.label, trig)
				}
			}
			for _, frag := range tt.wantSQL {
				if !strings.Contains(e.SQL, frag) {
					t.Errorf("entry %q SQL missing %q, got %q", tt.label, frag, e.SQL)
				}
			}
		})
	}
}

func TestEmbeddedCatalogHasParameterizedEntries(t *testing.T) {
	Reset()
	defer Reset()

	c, err := Get()
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}

	var idBased, dateRange int
	for _, e := range c.Entries() {
		if strings.Contains(e.SQL, "{id}") {
			idBased++
			if !strings.Contains(strings.ToUpper(e.SQL), "WHERE") {
				t.Errorf("id-based entry %q has no WHERE clause", e.Label)
			}
		}
		if strings.Contains(e.SQL, "{start_date}") && strings.Contains(e.SQL, "{end_date}") {
			dateRange++
			if !strings.Contains(strings.ToUpper(e.SQL), "BETWEEN") {
				t.Errorf("date-range entry %q has no BETWEEN clause", e.Label)
			}
		}
	}
	if idBased == 0 {
		t.Error("catalog has no id-based parameterized entries")
	}
	if dateRange == 0 {
		t.Error("catalog has no date-range parameterized entries")
	}
}

func TestLoadRejectsDuplicateLabels(t *testing.T) {
	data := []byte(`
templates:
  - triggers: ["a"]
    label: dup
    sql: "SELECT 1;"
  - triggers: ["b"]
    label: dup
    sql: "SELECT 2;"
`)
	if _, err := Load(data); err == nil {
		t.Fatal("Load() accepted duplicate labels")
	}
}

func TestLoadRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty label", `
templates:
  - triggers: ["a"]
    label: ""
    sql: "SELECT 1;"
`},
		{"no triggers", `
templates:
  - triggers: []
    label: x
    sql: "SELECT 1;"
`},
		{"blank trigger", `
templates:
  - triggers: ["a", ""]
    label: x
    sql: "SELECT 1;"
`},
		{"empty sql", `
templates:
  - triggers: ["a"]
    label: x
    sql: ""
`},
		{"no templates", `templates: []`},
		{"bad yaml", `templates: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.data)); err == nil {
				t.Errorf("Load() accepted %s", tt.name)
			}
		})
	}
}

func TestLoadRejectsEmptyAndOversizedData(t *testing.T) {
	if _, err := Load(nil); err == nil {
		t.Error("Load() accepted nil data")
	}
	if _, err := Load(make([]byte, MaxYAMLFileSize+1)); err == nil {
		t.Error("Load() accepted oversized data")
	}
}

func TestEntryParameterized(t *testing.T) {
	plain := Entry{SQL: "SELECT COUNT(*) FROM funcionarios;"}
	if plain.Parameterized() {
		t.Error("placeholder-free entry reported parameterized")
	}
	param := Entry{SQL: "SELECT * FROM clientes WHERE id = {id};"}
	if !param.Parameterized() {
		t.Error("entry with {id} not reported parameterized")
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
