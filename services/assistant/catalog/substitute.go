// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches a {name} token in a SQL template. Names are
// lowercase identifiers with optional underscores, e.g. {id}, {start_date}.
var placeholderPattern = regexp.MustCompile(`\{[a-z][a-z0-9_]*\}`)

// ErrUnresolvedPlaceholder indicates a SQL template still contains {name}
// tokens after substitution. Such SQL must never reach the database.
var ErrUnresolvedPlaceholder = fmt.Errorf("sql template contains unresolved placeholders")

// HasUnresolvedPlaceholders reports whether sql still contains {name} tokens.
func HasUnresolvedPlaceholders(sql string) bool {
	return placeholderPattern.MatchString(sql)
}

// Placeholders returns the placeholder names present in sql, in order of
// first appearance, without the surrounding braces.
func Placeholders(sql string) []string {
	matches := placeholderPattern.FindAllString(sql, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.Trim(m, "{}")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Substitute fills the {name} placeholders of a SQL template from params.
//
// Description:
//
//	Every placeholder in the template must have a value in params and every
//	param must correspond to a placeholder; mismatches in either direction
//	are errors. The result is guaranteed placeholder-free.
//
// Inputs:
//
//	sql - The SQL template.
//	params - Placeholder name to value map. Values are inserted verbatim.
//
// Outputs:
//
//	string - The resolved SQL.
//	error - Non-nil on missing or unknown params, wrapping
//	        ErrUnresolvedPlaceholder when tokens remain.
func Substitute(sql string, params map[string]string) (string, error) {
	names := Placeholders(sql)

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
		value, ok := params[name]
		if !ok {
			return "", fmt.Errorf("missing value for placeholder {%s}: %w", name, ErrUnresolvedPlaceholder)
		}
		sql = strings.ReplaceAll(sql, "{"+name+"}", value)
	}

	for name := range params {
		if !wanted[name] {
			return "", fmt.Errorf("unknown parameter %q for template", name)
		}
	}

	if HasUnresolvedPlaceholders(sql) {
		return "", fmt.Errorf("substituted values introduced new placeholders: %w", ErrUnresolvedPlaceholder)
	}
	return sql, nil
}
