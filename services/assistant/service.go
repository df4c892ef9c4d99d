// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package assistant wires the question-answering pipeline: match the
// question to SQL templates, execute them, assemble the prompt, call
// the language model, and record the exchange.
package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stolf-ltda/sophos/services/assistant/audit"
	"github.com/stolf-ltda/sophos/services/assistant/executor"
	"github.com/stolf-ltda/sophos/services/assistant/history"
	"github.com/stolf-ltda/sophos/services/assistant/prompt"
	"github.com/stolf-ltda/sophos/services/llm"
)

// LLMFailureText is the user-facing answer when the language model
// cannot be reached or errors out.
const LLMFailureText = "Erro ao obter resposta da API Gemini."

var (
	answerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sophos",
		Subsystem: "assistant",
		Name:      "answer_duration_seconds",
		Help:      "End-to-end time answering one question.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	answersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sophos",
		Subsystem: "assistant",
		Name:      "answers_total",
		Help:      "Answered questions by SQL success flag.",
	}, []string{"sucesso_sql"})
)

var tracer = otel.Tracer("sophos/assistant")

// Answer is the result of one answered question.
type Answer struct {
	// Resposta is the model-generated (or fallback) answer text.
	Resposta string

	// SucessoSQL reports the all-or-nothing success of the matched queries.
	SucessoSQL bool

	// SQLsUsadas is the executed SQL joined with ";\n", nil when no
	// query matched.
	SQLsUsadas *string
}

// Service runs the full answer pipeline.
//
// Thread Safety: Safe for concurrent use once constructed.
type Service struct {
	resolver *executor.Resolver
	model    llm.Client
	history  history.Store
	audit    *audit.Logger
}

// NewService wires the pipeline stages together.
func NewService(resolver *executor.Resolver, model llm.Client, hist history.Store, auditLog *audit.Logger) *Service {
	return &Service{
		resolver: resolver,
		model:    model,
		history:  hist,
		audit:    auditLog,
	}
}

// Answer processes one user question within a session.
//
// Description:
//
//	The question is appended to the session history before matching so
//	the prompt's history window includes it. Query execution failures
//	and model failures both degrade to fixed texts; the only way this
//	method fails is a cancelled context surfacing through a stage that
//	has nothing to degrade to, which currently does not exist, so the
//	error return is reserved for future stages.
func (s *Service) Answer(ctx context.Context, session, question string) (Answer, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "assistant.Answer")
	defer span.End()
	defer func() {
		answerDuration.Observe(time.Since(start).Seconds())
	}()

	if err := s.history.Append(ctx, session, "Usuário: "+question); err != nil {
		slog.Warn("failed to append question to history", slog.Any("error", err))
	}

	result := s.resolver.ResolveAndExecute(ctx, question)

	turns, err := s.history.Recent(ctx, session, prompt.HistoryWindow)
	if err != nil {
		slog.Warn("failed to read conversation history", slog.Any("error", err))
		turns = nil
	}

	fullPrompt := prompt.Full(question, result.Info, turns)

	resposta, err := s.model.Generate(ctx, fullPrompt)
	if err != nil {
		slog.Error("language model call failed", slog.String("error", llm.SafeLogString(err.Error())))
		resposta = LLMFailureText
	}

	s.audit.Record(ctx, question, result.QueriesUsed, resposta, result.Success)

	if err := s.history.Append(ctx, session, "IA: "+resposta); err != nil {
		slog.Warn("failed to append answer to history", slog.Any("error", err))
	}

	answersTotal.WithLabelValues(boolLabel(result.Success)).Inc()
	span.SetAttributes(
		attribute.Bool("answer.sucesso_sql", result.Success),
		attribute.Int("answer.queries", len(result.Outcomes)),
	)

	return Answer{
		Resposta:   resposta,
		SucessoSQL: result.Success,
		SQLsUsadas: result.QueriesUsed,
	}, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
