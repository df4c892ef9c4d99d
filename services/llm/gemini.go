// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultGeminiModel is the model used when none is configured.
	DefaultGeminiModel = "gemini-2.0-flash"

	// DefaultGeminiBaseURL is the Google Generative Language API root.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultGeminiTimeout bounds one generateContent call.
	DefaultGeminiTimeout = 30 * time.Second

	// NoAnswerText is returned when the API answers successfully but
	// produces no candidates or parts.
	NoAnswerText = "Sem resposta."
)

// =============================================================================
// Wire Types
// =============================================================================

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// =============================================================================
// GeminiClient
// =============================================================================

// GeminiClient calls the Gemini generateContent REST endpoint.
//
// Description:
//
//	Authentication uses the x-goog-api-key header so the key never
//	appears in URLs or logs. Error messages that might echo request
//	details pass through SafeLogString before logging.
//
// Thread Safety: Safe for concurrent use.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// GeminiOption customizes a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithModel overrides the default model.
func WithModel(model string) GeminiOption {
	return func(c *GeminiClient) { c.model = model }
}

// WithBaseURL overrides the API root, used by tests.
func WithBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = url }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) GeminiOption {
	return func(c *GeminiClient) { c.client = hc }
}

// NewGeminiClient builds a client for the given API key.
func NewGeminiClient(apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: gemini api key is empty")
	}
	c := &GeminiClient{
		apiKey:  apiKey,
		model:   DefaultGeminiModel,
		baseURL: DefaultGeminiBaseURL,
		client:  &http.Client{Timeout: DefaultGeminiTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate implements Client.
//
// Outputs:
//
//	string - The first candidate's first part, or NoAnswerText when the
//	         API returned 200 with no usable content.
//	error - Non-nil on transport failure or non-200 status.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm: marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("gemini call failed", slog.String("error", SafeLogString(err.Error())))
		return "", fmt.Errorf("llm: calling gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		slog.Error("gemini returned non-200",
			slog.Int("status", resp.StatusCode),
			slog.String("body", SafeLogString(string(raw))),
		)
		return "", fmt.Errorf("llm: gemini status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("llm: decoding response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return NoAnswerText, nil
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return NoAnswerText, nil
	}
	return text, nil
}
