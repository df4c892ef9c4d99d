// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package postgres owns the database connection pool and the startup
// schema verification for the STOLF LTDA marketing schema.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Config holds the connection parameters, one per environment variable.
type Config struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// DSN renders the config as a postgres URL. The password is escaped so
// special characters survive.
func (c Config) DSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// Open connects a pgx pool and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}
	return pool, nil
}

// ExecAdapter exposes pgxpool.Pool.Exec through the narrow interface
// the audit logger consumes.
type ExecAdapter struct {
	Pool *pgxpool.Pool
}

// Exec runs a parameterized statement, discarding the command tag.
func (a ExecAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := a.Pool.Exec(ctx, sql, args...)
	return err
}

// requiredTables are the tables the assistant depends on. Missing any
// of them is fatal at startup.
var requiredTables = []string{
	"departamentos",
	"funcionarios",
	"clientes",
	"projetos",
	"vendas",
	"contratos_marketing",
}

// VerifySchema checks that every required table exists and warns about
// empty ones.
//
// Description:
//
//	Existence checks run concurrently via errgroup, one to_regclass
//	probe per table; the first missing table aborts the group. Row
//	counts run afterwards, sequentially, and only produce warnings:
//	an empty table is a data problem, not a deployment problem.
func VerifySchema(ctx context.Context, pool *pgxpool.Pool) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, table := range requiredTables {
		table := table
		g.Go(func() error {
			var reg *string
			err := pool.QueryRow(gctx, "SELECT to_regclass($1)", table).Scan(&reg)
			if err != nil {
				return fmt.Errorf("postgres: checking table %q: %w", table, err)
			}
			if reg == nil {
				return fmt.Errorf("postgres: required table %q does not exist", table)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, table := range requiredTables {
		var count int64
		// Table names come from the fixed list above, never from input.
		err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			return fmt.Errorf("postgres: counting rows of %q: %w", table, err)
		}
		if count == 0 {
			slog.Warn("required table is empty", slog.String("table", table))
		}
	}

	slog.Info("database schema verified", slog.Int("tables", len(requiredTables)))
	return nil
}
