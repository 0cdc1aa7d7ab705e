package textsim

import (
	"errors"
	"math"
	"sort"
)

// Vectorizer is a TF-IDF model over a fixed corpus.
// It builds a vocabulary from the corpus and computes smoothed IDF values.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// Vector is a sparse, L2-normalized TF-IDF vector keyed by vocabulary index.
type Vector map[int]float64

// NewVectorizer builds the vocabulary and IDF values from corpus.
func NewVectorizer(corpus []string) (*Vectorizer, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus for TF-IDF")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range Terms(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Stable ordering for vocabulary indexes
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v, nil
}

// Dimension returns the vocabulary size.
func (v *Vectorizer) Dimension() int { return len(v.idf) }

// Vector computes the TF-IDF vector for text. Out-of-vocabulary terms are ignored.
func (v *Vectorizer) Vector(text string) Vector {
	tf := make(map[int]int)
	total := 0
	for _, tok := range Terms(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	vec := make(Vector, len(tf))
	if total == 0 {
		return vec
	}
	norm := 0.0
	for idx, count := range tf {
		w := float64(count) / float64(total) * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

// Cosine returns the cosine similarity of two normalized vectors.
func Cosine(a, b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0.0
	for idx, w := range a {
		sum += w * b[idx]
	}
	return sum
}
