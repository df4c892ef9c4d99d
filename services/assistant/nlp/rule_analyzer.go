// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nlp

import (
	"context"
	"strings"
	"unicode"
)

// portugueseStopwords is the stopword list applied by RuleAnalyzer.
// Function words only; domain nouns must never appear here or the
// matcher loses its signal.
var portugueseStopwords = map[string]struct{}{
	"a": {}, "à": {}, "às": {}, "ao": {}, "aos": {}, "as": {},
	"o": {}, "os": {}, "um": {}, "uma": {}, "uns": {}, "umas": {},
	"de": {}, "do": {}, "da": {}, "dos": {}, "das": {},
	"em": {}, "no": {}, "na": {}, "nos": {}, "nas": {},
	"num": {}, "numa": {}, "nuns": {}, "numas": {},
	"por": {}, "pelo": {}, "pela": {}, "pelos": {}, "pelas": {},
	"para": {}, "pra": {}, "com": {}, "sem": {}, "sob": {}, "sobre": {},
	"entre": {}, "até": {}, "desde": {}, "após": {}, "durante": {},
	"e": {}, "ou": {}, "mas": {}, "nem": {}, "que": {}, "se": {},
	"como": {}, "quando": {}, "onde": {}, "porque": {}, "pois": {},
	"qual": {}, "quais": {}, "quanto": {}, "quanta": {}, "quantos": {}, "quantas": {},
	"quem": {}, "cujo": {}, "cuja": {}, "cujos": {}, "cujas": {},
	"eu": {}, "tu": {}, "ele": {}, "ela": {}, "eles": {}, "elas": {},
	"nós": {}, "vós": {}, "você": {}, "vocês": {},
	"me": {}, "te": {}, "lhe": {}, "lhes": {}, "meu": {}, "minha": {},
	"meus": {}, "minhas": {}, "teu": {}, "tua": {}, "seu": {}, "sua": {},
	"seus": {}, "suas": {}, "nosso": {}, "nossa": {}, "nossos": {}, "nossas": {},
	"este": {}, "esta": {}, "estes": {}, "estas": {}, "isto": {},
	"esse": {}, "essa": {}, "esses": {}, "essas": {}, "isso": {},
	"aquele": {}, "aquela": {}, "aqueles": {}, "aquelas": {}, "aquilo": {},
	"é": {}, "são": {}, "foi": {}, "foram": {}, "era": {}, "eram": {},
	"ser": {}, "sendo": {}, "sido": {}, "está": {}, "estão": {},
	"estava": {}, "estavam": {}, "estar": {}, "temos": {}, "tem": {},
	"têm": {}, "tinha": {}, "tinham": {}, "ter": {}, "há": {}, "haver": {},
	"não": {}, "sim": {}, "já": {}, "ainda": {}, "também": {}, "só": {},
	"muito": {}, "muita": {}, "muitos": {}, "muitas": {}, "pouco": {}, "pouca": {},
	"mais": {}, "menos": {}, "bem": {}, "mal": {}, "cada": {}, "todo": {},
	"toda": {}, "todos": {}, "todas": {}, "outro": {}, "outra": {},
	"outros": {}, "outras": {}, "mesmo": {}, "mesma": {}, "tal": {},
	"então": {}, "assim": {}, "aqui": {}, "ali": {}, "lá": {}, "agora": {},
	"hoje": {}, "ontem": {}, "amanhã": {}, "sempre": {}, "nunca": {},
	"ah": {}, "oh": {}, "ok": {}, "etc": {},
}

// irregularLemmas maps inflected forms whose lemma the suffix rules
// cannot derive.
var irregularLemmas = map[string]string{
	"média":    "médio",
	"médias":   "médio",
	"meses":    "mês",
	"países":   "país",
	"pessoas":  "pessoa",
	"maior":    "grande",
	"maiores":  "grande",
	"menor":    "pequeno",
	"menores":  "pequeno",
	"melhor":   "bom",
	"melhores": "bom",
	"pior":     "ruim",
	"piores":   "ruim",
}

// invariantWords keep their surface form even though they end in "s".
var invariantWords = map[string]struct{}{
	"status": {},
	"bônus":  {},
	"vírus":  {},
	"lápis":  {},
	"ônibus": {},
}

// entityGazetteer maps content lemmas to canonical entity names. This
// drives the dynamic fallback decision table.
var entityGazetteer = map[string]string{
	"cliente":    "cliente",
	"promissor":  "promissor",
	"promissora": "promissor",
}

// RuleAnalyzer is a deterministic, dependency-free Portuguese analyzer.
//
// Description:
//
//	Tokenizes on non-letter boundaries, lowercases, marks stopwords, and
//	lemmatizes with an irregular-form table plus plural suffix rules. It
//	is intentionally shallow: the matcher only needs stable lemmas that
//	agree between trigger phrases and user questions, not linguistic
//	accuracy.
//
// Thread Safety: Stateless; safe for concurrent use.
type RuleAnalyzer struct{}

// NewRuleAnalyzer returns a RuleAnalyzer.
func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{}
}

// Analyze implements Analyzer.
func (a *RuleAnalyzer) Analyze(_ context.Context, text string) ([]Token, error) {
	words := tokenize(text)
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		_, stop := portugueseStopwords[lower]
		tokens = append(tokens, Token{
			Text:    lower,
			Lemma:   Lemmatize(lower),
			IsAlpha: isAlpha(lower),
			IsStop:  stop,
		})
	}
	return tokens, nil
}

// Entities implements Analyzer using the gazetteer.
func (a *RuleAnalyzer) Entities(ctx context.Context, text string) ([]string, error) {
	tokens, err := a.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	var ents []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if !tok.IsAlpha || tok.IsStop {
			continue
		}
		if canonical, ok := entityGazetteer[tok.Lemma]; ok && !seen[canonical] {
			seen[canonical] = true
			ents = append(ents, canonical)
		}
	}
	return ents, nil
}

// Lemmatize returns the canonical form of a single lowercased word.
//
// Description:
//
//	Checks the irregular table first, then applies Portuguese plural
//	suffix rules, then falls back to the word itself. Short words and
//	invariants are returned unchanged.
func Lemmatize(word string) string {
	if lemma, ok := irregularLemmas[word]; ok {
		return lemma
	}
	if _, ok := invariantWords[word]; ok {
		return word
	}

	runes := []rune(word)
	n := len(runes)
	if n <= 3 {
		return word
	}

	switch {
	case strings.HasSuffix(word, "ções"):
		return string(runes[:n-4]) + "ção"
	case strings.HasSuffix(word, "sões"):
		return string(runes[:n-4]) + "são"
	case strings.HasSuffix(word, "ães"):
		return string(runes[:n-3]) + "ão"
	case strings.HasSuffix(word, "ões"):
		return string(runes[:n-3]) + "ão"
	case strings.HasSuffix(word, "ais"):
		return string(runes[:n-2]) + "l"
	case strings.HasSuffix(word, "éis"):
		return string(runes[:n-3]) + "el"
	case strings.HasSuffix(word, "eis"):
		return string(runes[:n-3]) + "el"
	case strings.HasSuffix(word, "óis"):
		return string(runes[:n-3]) + "ol"
	case strings.HasSuffix(word, "ns"):
		return string(runes[:n-2]) + "m"
	case strings.HasSuffix(word, "res"), strings.HasSuffix(word, "zes"), strings.HasSuffix(word, "ses"):
		return string(runes[:n-2])
	case runes[n-1] == 's' && isVowel(runes[n-2]):
		return string(runes[:n-1])
	}
	return word
}

// tokenize splits text into maximal runs of letters and digits.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isAlpha(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u',
		'á', 'é', 'í', 'ó', 'ú',
		'â', 'ê', 'ô', 'ã', 'õ', 'à':
		return true
	}
	return false
}
