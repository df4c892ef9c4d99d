// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package assistant

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers every assistant endpoint on the engine.
//
// Endpoints:
//
//	POST /pergunta - Answer a natural-language question
//	GET  /api/query/total_vendas_por_mes - Monthly sales totals
//	GET  /api/query/funcionarios_por_departamento - Headcount per department
//	GET  /api/query/projetos_por_status - Project counts per status
//	GET  /api/query/receita_por_cliente - Top clients by revenue
//	GET  /health - Liveness probe
//	GET  /metrics - Prometheus metrics
func RegisterRoutes(engine *gin.Engine, handlers *Handlers) {
	engine.POST("/pergunta", handlers.HandlePergunta)

	api := engine.Group("/api/query")
	for _, q := range analyticsQueries {
		api.GET("/"+q.name, handlers.handleAnalytics(q))
	}

	engine.GET("/health", handlers.HandleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
