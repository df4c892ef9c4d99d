// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package executor

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// NoResultsText is the fixed message for an empty result set.
const NoResultsText = "Nenhum resultado encontrado."

// FormatRows renders query rows as dashed, comma-separated lines.
//
// Description:
//
//	Each row becomes "- v1, v2, ..." on its own line. Empty or nil input
//	yields NoResultsText. This text is fed to the language model, never
//	parsed back.
func FormatRows(rows [][]any) string {
	if len(rows) == 0 {
		return NoResultsText
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for _, v := range row {
			parts = append(parts, formatValue(v))
		}
		lines = append(lines, "- "+strings.Join(parts, ", "))
	}
	return strings.Join(lines, "\n")
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return trimFloat(x)
	case float32:
		return trimFloat(float64(x))
	case pgtype.Numeric:
		// Postgres numeric columns (salaries, budgets, sale values)
		// arrive as pgtype.Numeric, which must not render as a struct.
		if !x.Valid {
			return "NULL"
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return fmt.Sprintf("%v", v)
		}
		return trimFloat(f.Float64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// trimFloat renders whole-valued floats without a decimal part so a
// COUNT delivered as float reads as "42" rather than "42.000000".
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
