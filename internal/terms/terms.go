// Package terms provides tokenisation and term-frequency ranking over
// raw chunk text. It backs the textual signals used by theme extraction,
// connection rationale and tag suggestion, independent of the embedding
// model.
package terms

import (
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// minTokenLen filters out short function words before stopword checks.
const minTokenLen = 3

// Tokenize lowercases text and extracts word tokens, dropping stopwords
// and tokens shorter than three characters.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < minTokenLen {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Frequencies counts token occurrences in the given texts.
func Frequencies(texts ...string) map[string]int {
	freq := make(map[string]int)
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			freq[tok]++
		}
	}
	return freq
}

// Top returns the k most frequent terms across the given texts, most
// frequent first. Frequency ties break alphabetically for determinism.
func Top(k int, texts ...string) []string {
	if k <= 0 {
		return nil
	}
	freq := Frequencies(texts...)
	ranked := make([]string, 0, len(freq))
	for term := range freq {
		ranked = append(ranked, term)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if freq[ranked[i]] != freq[ranked[j]] {
			return freq[ranked[i]] > freq[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Shared returns the terms present in both lists, preserving the order
// of the first list.
func Shared(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, term := range b {
		inB[term] = true
	}
	var shared []string
	for _, term := range a {
		if inB[term] {
			shared = append(shared, term)
		}
	}
	return shared
}
