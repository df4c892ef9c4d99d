// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package assistant

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// analyticsQuery defines one fixed dashboard endpoint: its SQL and the
// JSON key for each result column, in column order.
type analyticsQuery struct {
	name    string
	sql     string
	columns []string
}

var analyticsQueries = []analyticsQuery{
	{
		name: "total_vendas_por_mes",
		sql: "SELECT TO_CHAR(data_venda, 'YYYY-MM') AS mes, SUM(valor) AS total_vendas " +
			"FROM vendas GROUP BY mes ORDER BY mes;",
		columns: []string{"mes", "total_vendas"},
	},
	{
		name: "funcionarios_por_departamento",
		sql: "SELECT d.nome AS departamento, COUNT(f.id) AS quantidade " +
			"FROM departamentos d LEFT JOIN funcionarios f ON f.departamento_id = d.id " +
			"GROUP BY d.nome ORDER BY quantidade DESC;",
		columns: []string{"departamento", "quantidade"},
	},
	{
		name:    "projetos_por_status",
		sql:     "SELECT status, COUNT(*) AS quantidade FROM projetos GROUP BY status ORDER BY quantidade DESC;",
		columns: []string{"status", "quantidade"},
	},
	{
		name: "receita_por_cliente",
		sql: "SELECT c.nome_empresa AS cliente, SUM(v.valor) AS receita " +
			"FROM clientes c JOIN projetos p ON p.cliente_id = c.id JOIN vendas v ON v.projeto_id = p.id " +
			"GROUP BY c.nome_empresa ORDER BY receita DESC LIMIT 5;",
		columns: []string{"cliente", "receita"},
	},
}

// handleAnalytics serves one fixed dashboard query as a JSON array of
// column-name to value objects, numbers coerced to float64.
func (h *Handlers) handleAnalytics(q analyticsQuery) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := h.exec.Query(c.Request.Context(), q.sql)
		if err != nil {
			slog.Error("analytics query failed",
				slog.String("query", q.name),
				slog.Any("error", err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro na consulta"})
			return
		}

		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			record := make(map[string]any, len(q.columns))
			for i, col := range q.columns {
				if i < len(row) {
					record[col] = coerceValue(row[i])
				}
			}
			out = append(out, record)
		}
		c.JSON(http.StatusOK, out)
	}
}

// coerceValue normalizes database values for JSON: every numeric type
// becomes float64, byte slices become strings, the rest pass through.
func coerceValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case []byte:
		return string(x)
	default:
		return v
	}
}
