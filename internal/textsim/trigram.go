package textsim

import (
	"regexp"
	"strings"
)

var trigramWord = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Trigrams returns the pg_trgm trigram set of text: every alphanumeric word is
// lower-cased, padded with two leading spaces and one trailing space, and cut
// into overlapping three-rune windows.
func Trigrams(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range trigramWord.FindAllString(strings.ToLower(text), -1) {
		r := []rune("  " + w + " ")
		for i := 0; i+3 <= len(r); i++ {
			set[string(r[i:i+3])] = struct{}{}
		}
	}
	return set
}

// Similarity is the pg_trgm similarity of a and b: shared trigrams over the
// size of the union. It is 0 when either side has no trigrams.
func Similarity(a, b string) float64 {
	return SetSimilarity(Trigrams(a), Trigrams(b))
}

// SetSimilarity is Similarity over precomputed trigram sets.
func SetSimilarity(ta, tb map[string]struct{}) float64 {
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if len(tb) < len(ta) {
		ta, tb = tb, ta
	}
	shared := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}
