package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerms_DropsStopwords(t *testing.T) {
	assert.Equal(t, []string{"experience", "kubernetes"}, Terms("What is your experience with Kubernetes?"))
	assert.Empty(t, Terms("what is the"))
}

func TestTrigrams_MatchesPgTrgm(t *testing.T) {
	// SELECT show_trgm('cat') => {"  c"," ca","at ","cat"}
	got := Trigrams("Cat")
	assert.Len(t, got, 4)
	for _, g := range []string{"  c", " ca", "cat", "at "} {
		assert.Contains(t, got, g)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("golang", "GoLang"), 1e-9)
	assert.Equal(t, 0.0, Similarity("", "anything"))
	assert.Equal(t, 0.0, Similarity("!!!", "anything"))

	// word vs word with one extra letter: {"  c"," ca","cat","at "} vs {"  c"," ca","cat","ats","ts "}
	assert.InDelta(t, 3.0/6.0, Similarity("cat", "cats"), 1e-9)
	assert.Greater(t, Similarity("kubernetes cluster", "kubernets"), Similarity("react frontend", "kubernets"))
}

func TestVectorizer_Cosine(t *testing.T) {
	corpus := []string{
		"Built Kubernetes operators in Go",
		"Designed React dashboards",
		"Ran PostgreSQL migrations",
	}
	v, err := NewVectorizer(corpus)
	require.NoError(t, err)
	assert.Greater(t, v.Dimension(), 0)

	q := v.Vector("kubernetes go")
	scores := make([]float64, len(corpus))
	for i, c := range corpus {
		scores[i] = Cosine(q, v.Vector(c))
	}
	assert.Greater(t, scores[0], 0.0)
	assert.Equal(t, 0.0, scores[1])
	assert.Equal(t, 0.0, scores[2])
	assert.InDelta(t, 1.0, Cosine(v.Vector(corpus[1]), v.Vector(corpus[1])), 1e-9)

	assert.Empty(t, v.Vector("unknown words only"))
}

func TestNewVectorizer_EmptyCorpus(t *testing.T) {
	_, err := NewVectorizer(nil)
	assert.Error(t, err)
}
