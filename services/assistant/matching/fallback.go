// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package matching

import (
	"context"
	"log/slog"
)

// FallbackRule maps a set of required entities to a fixed SQL query.
//
// Description:
//
//	A rule fires when every entity in Entities is present in the
//	question's extracted entity set. Rules are evaluated in table order
//	and the first firing rule supplies the match.
type FallbackRule struct {
	// Name identifies the rule in logs.
	Name string

	// Entities that must all be present for the rule to fire.
	Entities []string

	// Label attached to the generated query.
	Label string

	// SQL to execute when the rule fires. Must be placeholder-free.
	SQL string
}

// DefaultFallbackRules returns the built-in dynamic rule table.
func DefaultFallbackRules() []FallbackRule {
	return []FallbackRule{
		{
			Name:     "cliente-promissor",
			Entities: []string{"cliente", "promissor"},
			Label:    "cliente-promissor",
			SQL: "SELECT c.nome_empresa, SUM(v.valor) AS total_vendido " +
				"FROM clientes c " +
				"JOIN projetos p ON p.cliente_id = c.id " +
				"JOIN vendas v ON v.projeto_id = p.id " +
				"GROUP BY c.nome_empresa " +
				"ORDER BY total_vendido DESC " +
				"LIMIT 1;",
		},
	}
}

// dynamicMatches evaluates the fallback rule table against the question's
// entities. Entity extraction failure yields no matches.
func (m *Matcher) dynamicMatches(ctx context.Context, question string) []Match {
	ents, err := m.analyzer.Entities(ctx, question)
	if err != nil {
		slog.Warn("entity extraction failed, skipping dynamic fallback", slog.Any("error", err))
		return nil
	}
	if len(ents) == 0 {
		return nil
	}

	present := make(map[string]bool, len(ents))
	for _, e := range ents {
		present[e] = true
	}

	for _, rule := range m.fallback {
		fired := true
		for _, required := range rule.Entities {
			if !present[required] {
				fired = false
				break
			}
		}
		if fired {
			slog.Debug("dynamic fallback rule fired", slog.String("rule", rule.Name))
			// First firing rule wins; rules are ordered most specific first.
			return []Match{{Label: rule.Label, SQL: rule.SQL}}
		}
	}
	return nil
}
