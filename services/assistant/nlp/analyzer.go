// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package nlp provides lightweight Portuguese text analysis for the
// query matcher: tokenization, lemmatization, stopword filtering, and
// entity extraction. Two implementations exist: a deterministic
// rule-based analyzer with no external dependencies, and a client for
// an external analysis sidecar.
package nlp

import (
	"context"
)

// Token is one analyzed token of an input text.
type Token struct {
	// Text is the original token surface form, lowercased.
	Text string `json:"text"`

	// Lemma is the canonical dictionary form of the token.
	Lemma string `json:"lemma"`

	// IsAlpha reports whether the token consists only of letters.
	IsAlpha bool `json:"is_alpha"`

	// IsStop reports whether the token is a stopword.
	IsStop bool `json:"is_stop"`
}

// Analyzer turns raw Portuguese text into tokens and named entities.
//
// Description:
//
//	Implementations must be deterministic for a given input and safe for
//	concurrent use. Errors indicate the analysis could not be performed
//	at all; callers on the question-answering path treat failure as an
//	empty analysis rather than aborting the request.
type Analyzer interface {
	// Analyze tokenizes and lemmatizes text.
	Analyze(ctx context.Context, text string) ([]Token, error)

	// Entities returns the canonical named entities found in text,
	// lowercased, in order of appearance.
	Entities(ctx context.Context, text string) ([]string, error)
}

// LemmaSet extracts the set of content lemmas from text.
//
// Description:
//
//	Runs the analyzer and keeps the lemma of every alphabetic,
//	non-stopword token. Analysis failure degrades to an empty set so a
//	broken or unreachable analyzer yields "no match" instead of a request
//	error.
//
// Outputs:
//
//	map[string]struct{} - The lemma set. Never nil.
func LemmaSet(ctx context.Context, a Analyzer, text string) map[string]struct{} {
	set := make(map[string]struct{})
	tokens, err := a.Analyze(ctx, text)
	if err != nil {
		return set
	}
	for _, tok := range tokens {
		if tok.IsAlpha && !tok.IsStop {
			set[tok.Lemma] = struct{}{}
		}
	}
	return set
}
