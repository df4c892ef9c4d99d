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
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stolf-ltda/sophos/services/assistant/executor"
	"github.com/stolf-ltda/sophos/services/assistant/history"
)

// Handlers carries the HTTP handler dependencies.
type Handlers struct {
	service *Service
	exec    executor.QueryExecutor
}

// NewHandlers builds the handler set. exec serves the analytics
// endpoints directly, outside the matching pipeline.
func NewHandlers(service *Service, exec executor.QueryExecutor) *Handlers {
	return &Handlers{service: service, exec: exec}
}

// perguntaRequest is the POST /pergunta body.
type perguntaRequest struct {
	Pergunta string `json:"pergunta"`
	Sessao   string `json:"sessao"`
}

// perguntaResponse mirrors the legacy wire contract, field names
// included. Every field is always serialized: when nothing matched,
// sucesso_sql is false and sqls_usadas is an explicit null.
type perguntaResponse struct {
	Resposta   string  `json:"resposta"`
	Sucesso    bool    `json:"sucesso"`
	Erro       *string `json:"erro"`
	SucessoSQL bool    `json:"sucesso_sql"`
	SQLsUsadas *string `json:"sqls_usadas"`
}

// perguntaError is the 4xx/5xx body. The SQL fields are absent because
// no pipeline ran, matching the legacy error shape.
type perguntaError struct {
	Resposta string  `json:"resposta"`
	Sucesso  bool    `json:"sucesso"`
	Erro     *string `json:"erro"`
}

// HandlePergunta answers POST /pergunta.
//
// Description:
//
//	Sessions come from the X-Session-ID header or the "sessao" body
//	field; absent both, all callers share the default session, which
//	preserves the legacy single-conversation behavior.
func (h *Handlers) HandlePergunta(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	log := slog.With(slog.String("request_id", requestID))

	var req perguntaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("malformed /pergunta body", slog.Any("error", err))
		respondEmptyQuestion(c)
		return
	}

	question := strings.TrimSpace(req.Pergunta)
	if question == "" {
		respondEmptyQuestion(c)
		return
	}

	session := c.GetHeader("X-Session-ID")
	if session == "" {
		session = req.Sessao
	}
	if session == "" {
		session = history.DefaultSession
	}

	log.Info("answering question",
		slog.String("session", session),
		slog.Int("question_len", len(question)),
	)

	answer, err := h.service.Answer(c.Request.Context(), session, question)
	if err != nil {
		log.Error("answer pipeline failed", slog.Any("error", err))
		msg := "Erro interno ao processar a pergunta."
		c.JSON(http.StatusInternalServerError, perguntaError{
			Resposta: "",
			Sucesso:  false,
			Erro:     &msg,
		})
		return
	}

	c.JSON(http.StatusOK, perguntaResponse{
		Resposta:   answer.Resposta,
		Sucesso:    true,
		Erro:       nil,
		SucessoSQL: answer.SucessoSQL,
		SQLsUsadas: answer.SQLsUsadas,
	})
}

func respondEmptyQuestion(c *gin.Context) {
	msg := `Campo "pergunta" está vazio.`
	c.JSON(http.StatusBadRequest, perguntaError{
		Resposta: "",
		Sucesso:  false,
		Erro:     &msg,
	})
}

// HandleHealth answers GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getOrCreateRequestID returns the X-Request-ID header value or mints a
// new UUID so every log line of a request can be correlated.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}
