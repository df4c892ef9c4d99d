// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nlp

import (
	"context"
	"testing"
)

func TestLemmatize(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"funcionários", "funcionário"},
		{"funcionário", "funcionário"},
		{"vendas", "venda"},
		{"projetos", "projeto"},
		{"departamentos", "departamento"},
		{"clientes", "cliente"},
		{"salários", "salário"},
		{"média", "médio"},
		{"meses", "mês"},
		{"promoções", "promoção"},
		{"promissores", "promissor"},
		{"vezes", "vez"},
		{"viagens", "viagem"},
		{"status", "status"},
		{"sim", "sim"},
		{"total", "total"},
	}

	for _, tt := range tests {
		if got := Lemmatize(tt.word); got != tt.want {
			t.Errorf("Lemmatize(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestAnalyzeMarksStopwordsAndAlpha(t *testing.T) {
	a := NewRuleAnalyzer()
	tokens, err := a.Analyze(context.Background(), "Quantos funcionários temos em 2025?")
	if err != nil {
		t.Fatalf("Analyze() returned error: %v", err)
	}

	byText := make(map[string]Token)
	for _, tok := range tokens {
		byText[tok.Text] = tok
	}

	if tok, ok := byText["quantos"]; !ok || !tok.IsStop {
		t.Errorf("token 'quantos' should be a stopword, got %+v", tok)
	}
	if tok, ok := byText["temos"]; !ok || !tok.IsStop {
		t.Errorf("token 'temos' should be a stopword, got %+v", tok)
	}
	if tok, ok := byText["funcionários"]; !ok || tok.IsStop || !tok.IsAlpha || tok.Lemma != "funcionário" {
		t.Errorf("token 'funcionários' misanalyzed: %+v", tok)
	}
	if tok, ok := byText["2025"]; !ok || tok.IsAlpha {
		t.Errorf("token '2025' should not be alphabetic, got %+v", tok)
	}
}

func TestLemmaSetFiltersStopwordsAndNonAlpha(t *testing.T) {
	a := NewRuleAnalyzer()
	set := LemmaSet(context.Background(), a, "Quantos funcionários temos?")

	if _, ok := set["funcionário"]; !ok {
		t.Errorf("lemma set missing 'funcionário': %v", set)
	}
	if _, ok := set["quantos"]; ok {
		t.Error("lemma set contains stopword 'quantos'")
	}
	if _, ok := set["temos"]; ok {
		t.Error("lemma set contains stopword 'temos'")
	}
}

func TestLemmaSetAgreesBetweenTriggerAndQuestion(t *testing.T) {
	a := NewRuleAnalyzer()
	ctx := context.Background()

	tests := []struct {
		trigger  string
		question string
	}{
		{"quantos funcionários", "Quantos funcionários temos?"},
		{"salário médio", "Qual é o salário médio dos funcionários?"},
		{"média salarial", "Me mostra a média salarial"},
		{"projetos por status", "Quantos projetos por status?"},
		{"listar clientes", "Pode listar os clientes?"},
	}

	for _, tt := range tests {
		trig := LemmaSet(ctx, a, tt.trigger)
		quest := LemmaSet(ctx, a, tt.question)

		overlap := false
		for lemma := range trig {
			if _, ok := quest[lemma]; ok {
				overlap = true
				break
			}
		}
		if !overlap {
			t.Errorf("no lemma overlap between trigger %q (%v) and question %q (%v)",
				tt.trigger, trig, tt.question, quest)
		}
	}
}

func TestEntitiesGazetteer(t *testing.T) {
	a := NewRuleAnalyzer()
	ctx := context.Background()

	ents, err := a.Entities(ctx, "Qual é o cliente mais promissor?")
	if err != nil {
		t.Fatalf("Entities() returned error: %v", err)
	}
	if len(ents) != 2 || ents[0] != "cliente" || ents[1] != "promissor" {
		t.Errorf("Entities() = %v, want [cliente promissor]", ents)
	}

	ents, err = a.Entities(ctx, "Quantos funcionários temos?")
	if err != nil {
		t.Fatalf("Entities() returned error: %v", err)
	}
	if len(ents) != 0 {
		t.Errorf("Entities() = %v, want none", ents)
	}
}

func TestEntitiesDeduplicates(t *testing.T) {
	a := NewRuleAnalyzer()
	ents, err := a.Entities(context.Background(), "cliente cliente clientes promissores")
	if err != nil {
		t.Fatalf("Entities() returned error: %v", err)
	}
	if len(ents) != 2 {
		t.Errorf("Entities() = %v, want deduplicated [cliente promissor]", ents)
	}
}
