// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(""); err == nil {
		t.Fatal("NewGeminiClient accepted empty api key")
	}
}

func TestGeminiGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "pergunta" {
			t.Errorf("unexpected payload: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "resposta do modelo"}}}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	got, err := c.Generate(context.Background(), "pergunta")
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if got != "resposta do modelo" {
		t.Errorf("Generate() = %q", got)
	}
}

func TestGeminiGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c, _ := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	got, err := c.Generate(context.Background(), "pergunta")
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if got != NoAnswerText {
		t.Errorf("Generate() = %q, want %q", got, NoAnswerText)
	}
}

func TestGeminiGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	if _, err := c.Generate(context.Background(), "pergunta"); err == nil {
		t.Fatal("Generate() succeeded on API error")
	}
}

func TestGeminiGenerateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	c, _ := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	if _, err := c.Generate(context.Background(), "pergunta"); err == nil {
		t.Fatal("Generate() succeeded on transport error")
	}
}

func TestGeminiWithModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "outro-modelo:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c, _ := NewGeminiClient("test-key", WithBaseURL(srv.URL), WithModel("outro-modelo"))
	c.Generate(context.Background(), "pergunta")
}
