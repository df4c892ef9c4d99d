// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/stolf-ltda/sophos/services/postgres"
)

// requiredEnvVars must all be set for the service to start.
var requiredEnvVars = []string{
	"DB_HOST",
	"DB_PORT",
	"DB_NAME",
	"DB_USER",
	"DB_PASSWORD",
	"GEMINI_API_KEY",
}

// Config is the process configuration, read once at startup.
type Config struct {
	DB postgres.Config

	GeminiAPIKey string
	GeminiModel  string

	// Port the HTTP server listens on.
	Port string

	// NLPServiceURL selects the remote analysis sidecar; empty selects
	// the built-in rule analyzer.
	NLPServiceURL string

	// HistoryDir selects persistent conversation history; empty keeps
	// history in memory.
	HistoryDir string

	Debug bool
}

// LoadConfig reads the environment, merging a .env file when present.
//
// Description:
//
//	A missing .env file is fine: container deployments inject the
//	environment directly. Missing required variables are reported
//	together so one restart fixes them all.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var missing []string
	for _, v := range requiredEnvVars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := Config{
		DB: postgres.Config{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		},
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		Port:          os.Getenv("PORT"),
		NLPServiceURL: os.Getenv("NLP_SERVICE_URL"),
		HistoryDir:    os.Getenv("HISTORY_DIR"),
		Debug:         os.Getenv("DEBUG") == "true",
	}
	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	return cfg, nil
}
