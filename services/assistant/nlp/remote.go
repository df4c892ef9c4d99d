// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultRemoteTimeout bounds a single analysis call to the sidecar.
const DefaultRemoteTimeout = 5 * time.Second

// RemoteAnalyzer calls an external text-analysis sidecar over HTTP.
//
// Description:
//
//	The sidecar exposes POST /analyze accepting {"text": "..."} and
//	returning {"tokens": [...], "entities": [...]}. A full linguistic
//	model lives behind that endpoint; this client only moves JSON.
//
// Thread Safety: Safe for concurrent use.
type RemoteAnalyzer struct {
	baseURL string
	client  *http.Client
}

// NewRemoteAnalyzer returns a client for the analysis sidecar at baseURL.
func NewRemoteAnalyzer(baseURL string) *RemoteAnalyzer {
	return &RemoteAnalyzer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultRemoteTimeout},
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Tokens   []Token  `json:"tokens"`
	Entities []string `json:"entities"`
}

// Analyze implements Analyzer.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, text string) ([]Token, error) {
	resp, err := a.post(ctx, text)
	if err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}

// Entities implements Analyzer.
func (a *RemoteAnalyzer) Entities(ctx context.Context, text string) ([]string, error) {
	resp, err := a.post(ctx, text)
	if err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

func (a *RemoteAnalyzer) post(ctx context.Context, text string) (*analyzeResponse, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("nlp: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("nlp: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nlp: calling sidecar: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("nlp: sidecar returned %d: %s", httpResp.StatusCode, string(raw))
	}

	var parsed analyzeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("nlp: decoding response: %w", err)
	}
	return &parsed, nil
}
