package text

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into lowercase terms, dropping stop words.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// NewTokenizer creates a Tokenizer with the given stop-word set.
// A nil set disables stop-word filtering.
func NewTokenizer(stopWords map[string]struct{}) *Tokenizer {
	return &Tokenizer{stopWords: stopWords}
}

// Tokenize lowercases text, splits it on every rune that is not a letter or
// digit, and removes single-character tokens and stop words.
// Returns nil when nothing survives filtering.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, tok := range raw {
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, stop := t.stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// TermCounts returns the raw occurrence count of each token.
func TermCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
