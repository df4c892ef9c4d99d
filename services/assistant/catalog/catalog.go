// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog holds the static registry of question-to-SQL template
// mappings used by the matcher. The catalog is loaded once from an
// embedded YAML document at process start and is immutable afterwards.
package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Default Template Catalog
// =============================================================================

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// MaxYAMLFileSize bounds the size of a catalog document. The embedded
// catalog is a few KB; anything larger indicates a corrupted or hostile file.
const MaxYAMLFileSize = 1 << 20 // 1 MiB

// =============================================================================
// Catalog Types
// =============================================================================

// Entry is one mapping from natural-language trigger phrases to a SQL template.
//
// Description:
//
//	Triggers are never matched verbatim; they exist only as a source of
//	lemmas for the matcher. The SQL may contain named placeholders such as
//	{id} or {start_date}; such entries are parameterized and are excluded
//	from the direct question-answering path until a caller resolves the
//	placeholders explicitly.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Entry struct {
	// Triggers are the natural-language phrases a user might use.
	Triggers []string `yaml:"triggers"`

	// Label uniquely identifies the entry within the catalog.
	Label string `yaml:"label"`

	// SQL is the query template, optionally containing {name} placeholders.
	SQL string `yaml:"sql"`
}

// Parameterized reports whether the entry's SQL contains unresolved placeholders.
func (e Entry) Parameterized() bool {
	return HasUnresolvedPlaceholders(e.SQL)
}

// Catalog is the ordered, immutable set of template entries.
//
// Description:
//
//	Iteration order is the authoring order of the YAML document and is
//	the order match results are returned in.
//
// Thread Safety: Immutable after loading; safe for unsynchronized
// concurrent reads.
type Catalog struct {
	entries []Entry
}

// Entries returns the catalog entries in authoring order.
// Callers must not mutate the returned slice.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry with the given label, if present.
func (c *Catalog) Lookup(label string) (Entry, bool) {
	for _, e := range c.entries {
		if e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}

// =============================================================================
// Singleton Catalog
// =============================================================================

var (
	catalogMu      sync.RWMutex
	cachedCatalog  *Catalog
	catalogLoadErr error
)

// Get returns the cached template catalog, loading the embedded YAML on
// first call.
//
// Description:
//
//	Loads and validates the embedded catalog once and caches it for all
//	subsequent calls. Validation failure is cached too: the process is
//	expected to fail fast at startup rather than retry.
//
// Outputs:
//
//	*Catalog - The loaded catalog. Never nil on success.
//	error - Non-nil if loading or validation failed.
//
// Thread Safety: Safe for concurrent use.
func Get() (*Catalog, error) {
	catalogMu.RLock()
	if cachedCatalog != nil || catalogLoadErr != nil {
		c, err := cachedCatalog, catalogLoadErr
		catalogMu.RUnlock()
		return c, err
	}
	catalogMu.RUnlock()

	catalogMu.Lock()
	defer catalogMu.Unlock()

	if cachedCatalog == nil && catalogLoadErr == nil {
		cachedCatalog, catalogLoadErr = Load(defaultTemplatesYAML)
	}
	return cachedCatalog, catalogLoadErr
}

// Reset clears the cached catalog so tests can reload with different data.
//
// Thread Safety: Safe for concurrent use.
func Reset() {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	cachedCatalog = nil
	catalogLoadErr = nil
}

// =============================================================================
// Loading & Validation
// =============================================================================

// catalogDocument is the YAML wire format of the catalog.
type catalogDocument struct {
	Templates []Entry `yaml:"templates"`
}

// Load parses and validates a template catalog from YAML bytes.
//
// Description:
//
//	Parses the document and validates every entry: non-empty trigger list
//	with no blank phrases, non-empty label, non-empty SQL, and label
//	uniqueness across the whole catalog.
//
// Inputs:
//
//	data - Raw YAML bytes to parse.
//
// Outputs:
//
//	*Catalog - The validated catalog.
//	error - Non-nil if parsing or validation fails.
func Load(data []byte) (*Catalog, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("catalog: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("catalog: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parsing YAML: %w", err)
	}
	if len(doc.Templates) == 0 {
		return nil, fmt.Errorf("catalog: no templates defined")
	}

	if err := validateEntries(doc.Templates); err != nil {
		return nil, fmt.Errorf("catalog: validation: %w", err)
	}

	parameterized := 0
	for _, e := range doc.Templates {
		if e.Parameterized() {
			parameterized++
		}
	}

	slog.Info("template catalog loaded",
		slog.Int("entries", len(doc.Templates)),
		slog.Int("parameterized", parameterized),
	)

	return &Catalog{entries: doc.Templates}, nil
}

// validateEntries checks every entry for consistency and label uniqueness.
func validateEntries(entries []Entry) error {
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.Label == "" {
			return fmt.Errorf("template[%d]: label must not be empty", i)
		}
		if prev, dup := seen[e.Label]; dup {
			return fmt.Errorf("template[%d]: duplicate label %q (first at index %d)", i, e.Label, prev)
		}
		seen[e.Label] = i

		if len(e.Triggers) == 0 {
			return fmt.Errorf("template[%d] (%s): triggers must not be empty", i, e.Label)
		}
		for j, t := range e.Triggers {
			if t == "" {
				return fmt.Errorf("template[%d] (%s): trigger[%d] must not be empty", i, e.Label, j)
			}
		}

		if e.SQL == "" {
			return fmt.Errorf("template[%d] (%s): sql must not be empty", i, e.Label)
		}
	}
	return nil
}
