// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package matching resolves natural-language questions to SQL templates.
// The static matcher intersects question lemmas with per-entry trigger
// lemmas; the dynamic fallback applies an entity decision table when no
// static entry matches.
package matching

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stolf-ltda/sophos/services/assistant/catalog"
	"github.com/stolf-ltda/sophos/services/assistant/nlp"
)

// =============================================================================
// Metrics
// =============================================================================

var (
	matchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sophos",
		Subsystem: "matching",
		Name:      "duration_seconds",
		Help:      "Time spent resolving a question to SQL templates.",
		Buckets:   prometheus.DefBuckets,
	})

	matchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sophos",
		Subsystem: "matching",
		Name:      "results_total",
		Help:      "Match outcomes by source (static, fallback, none).",
	}, []string{"source"})

	matchedEntries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sophos",
		Subsystem: "matching",
		Name:      "entries_matched_total",
		Help:      "Total catalog entries matched across all questions.",
	})
)

var tracer = otel.Tracer("sophos/matching")

// =============================================================================
// Matcher
// =============================================================================

// Match is one resolved (label, SQL) pair for a question.
type Match struct {
	Label string
	SQL   string
}

// Matcher resolves questions against the template catalog by lemma overlap.
//
// Description:
//
//	Trigger lemma sets are computed once at construction. A question
//	matches an entry when the intersection of its lemma set and the
//	entry's trigger lemma set is non-empty. Matches are returned in
//	catalog order; there is no ranking. Parameterized entries never match
//	because their SQL cannot be executed without resolved values.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Matcher struct {
	analyzer nlp.Analyzer
	entries  []matcherEntry
	fallback []FallbackRule
}

type matcherEntry struct {
	label  string
	sql    string
	lemmas map[string]struct{}
}

// NewMatcher builds a Matcher over the given catalog.
//
// Description:
//
//	Lemmatizes every trigger phrase up front. Parameterized entries and
//	entries whose triggers yield no lemmas are dropped from the matchable
//	set. The default fallback rule table is attached; use WithFallback to
//	replace it.
//
// Inputs:
//
//	ctx - Used for trigger analysis at construction time.
//	cat - The loaded template catalog.
//	analyzer - The text analyzer shared with question analysis.
func NewMatcher(ctx context.Context, cat *catalog.Catalog, analyzer nlp.Analyzer) *Matcher {
	m := &Matcher{
		analyzer: analyzer,
		fallback: DefaultFallbackRules(),
	}
	for _, e := range cat.Entries() {
		if e.Parameterized() {
			continue
		}
		lemmas := make(map[string]struct{})
		for _, trigger := range e.Triggers {
			for lemma := range nlp.LemmaSet(ctx, analyzer, trigger) {
				lemmas[lemma] = struct{}{}
			}
		}
		if len(lemmas) == 0 {
			continue
		}
		m.entries = append(m.entries, matcherEntry{label: e.Label, sql: e.SQL, lemmas: lemmas})
	}
	return m
}

// WithFallback replaces the dynamic fallback rule table.
func (m *Matcher) WithFallback(rules []FallbackRule) *Matcher {
	m.fallback = rules
	return m
}

// Match returns the static catalog matches for a question, in catalog order.
func (m *Matcher) Match(ctx context.Context, question string) []Match {
	questionLemmas := nlp.LemmaSet(ctx, m.analyzer, question)
	if len(questionLemmas) == 0 {
		return nil
	}

	var matches []Match
	for _, e := range m.entries {
		if intersects(e.lemmas, questionLemmas) {
			matches = append(matches, Match{Label: e.label, SQL: e.sql})
		}
	}
	return matches
}

// Resolve returns the queries to run for a question: static matches when
// any exist, otherwise dynamic fallback matches, otherwise nil.
//
// Description:
//
//	The fallback is consulted only when the static pass is empty; a
//	single static match suppresses all dynamic rules.
func (m *Matcher) Resolve(ctx context.Context, question string) []Match {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "matching.Resolve")
	defer span.End()
	defer func() {
		matchDuration.Observe(time.Since(start).Seconds())
	}()

	matches := m.Match(ctx, question)
	source := "static"
	if len(matches) == 0 {
		matches = m.dynamicMatches(ctx, question)
		source = "fallback"
	}
	if len(matches) == 0 {
		source = "none"
	}

	matchResults.WithLabelValues(source).Inc()
	matchedEntries.Add(float64(len(matches)))
	span.SetAttributes(
		attribute.String("match.source", source),
		attribute.Int("match.count", len(matches)),
	)
	return matches
}

func intersects(a, b map[string]struct{}) bool {
	// Iterate the smaller set.
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
