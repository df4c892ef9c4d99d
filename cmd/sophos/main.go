// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command sophos runs the STOLF LTDA virtual assistant.
//
// The assistant answers Portuguese questions about the agency's
// marketing database by matching them to SQL templates, executing the
// queries, and letting Gemini phrase the results.
//
// Usage:
//
//	sophos serve            # HTTP API on $PORT (default 5000)
//	sophos console          # interactive terminal session
//
// Configuration comes from the environment (or a local .env file):
// DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD, GEMINI_API_KEY are
// required; PORT, DB_SSLMODE, GEMINI_MODEL, NLP_SERVICE_URL,
// HISTORY_DIR, DEBUG are optional.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/stolf-ltda/sophos/services/assistant"
	"github.com/stolf-ltda/sophos/services/assistant/audit"
	"github.com/stolf-ltda/sophos/services/assistant/catalog"
	"github.com/stolf-ltda/sophos/services/assistant/executor"
	"github.com/stolf-ltda/sophos/services/assistant/history"
	"github.com/stolf-ltda/sophos/services/assistant/matching"
	"github.com/stolf-ltda/sophos/services/assistant/nlp"
	"github.com/stolf-ltda/sophos/services/llm"
	"github.com/stolf-ltda/sophos/services/postgres"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sophos",
		Short: "Assistente virtual da STOLF LTDA",
	}
	rootCmd.AddCommand(newServeCmd(), newConsoleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap holds the wired pipeline plus the resources to close on exit.
type bootstrap struct {
	service  *assistant.Service
	exec     executor.QueryExecutor
	closeFns []func()
}

func (b *bootstrap) close() {
	for i := len(b.closeFns) - 1; i >= 0; i-- {
		b.closeFns[i]()
	}
}

// buildPipeline connects every stage from configuration: database,
// catalog, analyzer, matcher, model client, history store, audit log.
func buildPipeline(ctx context.Context, cfg Config) (*bootstrap, error) {
	b := &bootstrap{}

	pool, err := postgres.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	b.closeFns = append(b.closeFns, pool.Close)

	if err := postgres.VerifySchema(ctx, pool); err != nil {
		b.close()
		return nil, err
	}

	cat, err := catalog.Get()
	if err != nil {
		b.close()
		return nil, err
	}

	var analyzer nlp.Analyzer
	if cfg.NLPServiceURL != "" {
		analyzer = nlp.NewRemoteAnalyzer(cfg.NLPServiceURL)
		slog.Info("using remote text analyzer", slog.String("url", cfg.NLPServiceURL))
	} else {
		analyzer = nlp.NewRuleAnalyzer()
		slog.Info("using built-in rule analyzer")
	}

	matcher := matching.NewMatcher(ctx, cat, analyzer)
	exec := executor.NewPgxExecutor(pool)
	resolver := executor.NewResolver(matcher, exec)

	modelOpts := []llm.GeminiOption{}
	if cfg.GeminiModel != "" {
		modelOpts = append(modelOpts, llm.WithModel(cfg.GeminiModel))
	}
	model, err := llm.NewGeminiClient(cfg.GeminiAPIKey, modelOpts...)
	if err != nil {
		b.close()
		return nil, err
	}

	var hist history.Store
	if cfg.HistoryDir != "" {
		db, err := history.OpenBadger(cfg.HistoryDir)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closeFns = append(b.closeFns, func() {
			if err := db.Close(); err != nil {
				slog.Warn("closing history database", slog.Any("error", err))
			}
		})
		hist = history.NewBadgerStore(db, 0)
		slog.Info("conversation history persisted", slog.String("dir", cfg.HistoryDir))
	} else {
		hist = history.NewMemoryStore()
	}

	auditLog := audit.NewLogger(postgres.ExecAdapter{Pool: pool})

	b.service = assistant.NewService(resolver, model, hist, auditLog)
	b.exec = exec
	return b, nil
}

// newServeCmd returns the HTTP server subcommand.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}

			if cfg.Debug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			// W3C trace context flows from incoming headers through
			// every handler via the otelgin middleware below.
			otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
				propagation.TraceContext{},
				propagation.Baggage{},
			))

			b, err := buildPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.close()

			router := gin.New()
			router.Use(gin.Recovery())
			router.Use(otelgin.Middleware("sophos"))
			if cfg.Debug {
				router.Use(gin.Logger())
			}
			assistant.RegisterRoutes(router, assistant.NewHandlers(b.service, b.exec))

			addr := ":" + cfg.Port
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			slog.Info("starting sophos server", slog.String("address", addr))
			srv := &http.Server{Handler: router}
			return serveUntilSignal(srv, ln, quit, shutdownDrainTimeout)
		},
	}
}

// shutdownDrainTimeout bounds how long in-flight requests may finish
// after a termination signal.
const shutdownDrainTimeout = 10 * time.Second

// serveUntilSignal serves on ln until a signal arrives, then drains
// in-flight requests before returning.
//
// Description:
//
//	The listener goroutine reports server failure through a channel so
//	a crashed server and a clean signal both unblock the caller. After
//	a signal, requests already being handled get up to drain to finish;
//	new connections are refused immediately.
func serveUntilSignal(srv *http.Server, ln net.Listener, quit <-chan os.Signal, drain time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case sig := <-quit:
		slog.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("draining requests: %w", err)
	}
	return nil
}

// newConsoleCmd returns the interactive terminal subcommand.
func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Ask questions from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.close()

			fmt.Println("Sophos, assistente virtual da STOLF LTDA está pronto para responder às suas perguntas.")
			fmt.Println("(Digite 'sair' ou 'exit' para encerrar.)")
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("Digite sua pergunta: ")
				if !scanner.Scan() {
					fmt.Println("\nEncerrando.")
					return scanner.Err()
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					continue
				}
				switch strings.ToLower(question) {
				case "sair", "exit", "quit":
					fmt.Println("Encerrando.")
					return nil
				}

				answer, err := b.service.Answer(ctx, history.DefaultSession, question)
				if err != nil {
					slog.Error("answer failed", slog.Any("error", err))
					continue
				}
				fmt.Println()
				fmt.Println(answer.Resposta)
				fmt.Println()
			}
		},
	}
}
