// Package textsim holds the lexical scoring primitives shared by the
// in-process and SQLite search indexes.
package textsim

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// Tokens lower-cases text and returns its word tokens, stopwords included.
func Tokens(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Terms returns the tokens of text with stopwords removed.
func Terms(text string) []string {
	raw := Tokens(text)
	out := raw[:0]
	for _, t := range raw {
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// IsStopword reports whether tok carries no retrieval signal.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "whom", "when", "why", "how", "do", "does", "did", "have", "has", "had", "i", "me", "my", "you", "your", "yours", "we", "our", "tell", "any", "some", "there", "here",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
