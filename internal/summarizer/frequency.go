package summarizer

import (
	"math"
	"sort"
	"strings"

	"resumechat/internal/domain"
	"resumechat/internal/textsim"
)

// FrequencySummarizer picks the most representative chunks of a résumé by
// normalized term frequency. Output is extractive: chunks are returned verbatim.
type FrequencySummarizer struct {
	maxChunks int
}

// NewFrequencySummarizer creates a summarizer returning at most maxChunks chunks.
func NewFrequencySummarizer(maxChunks int) *FrequencySummarizer {
	if maxChunks <= 0 {
		maxChunks = 3
	}
	return &FrequencySummarizer{maxChunks: maxChunks}
}

// Highlights ranks non-header chunks by term frequency and returns the best
// ones in document order.
func (s *FrequencySummarizer) Highlights(chunks []domain.Chunk) []domain.Chunk {
	freq := map[string]float64{}
	for _, c := range chunks {
		for _, tok := range textsim.Terms(c.Content) {
			freq[tok]++
		}
	}
	// Normalize frequencies
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	var scores []pair
	for i, c := range chunks {
		if c.Type == domain.ChunkHeader {
			continue
		}
		terms := textsim.Terms(c.Content)
		if len(terms) == 0 {
			continue
		}
		sc := 0.0
		for _, tok := range terms {
			sc += freq[tok]
		}
		// Normalize by length to avoid bias toward long bullets
		scores = append(scores, pair{i, sc / math.Sqrt(float64(len(terms)))})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	n := s.maxChunks
	if n > len(scores) {
		n = len(scores)
	}
	// Keep original order among selected
	selected := make([]int, n)
	for i := 0; i < n; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]domain.Chunk, 0, n)
	for _, idx := range selected {
		out = append(out, chunks[idx])
	}
	return out
}

// Summarize joins the highlighted chunk contents into one line.
func (s *FrequencySummarizer) Summarize(chunks []domain.Chunk) string {
	hl := s.Highlights(chunks)
	parts := make([]string, len(hl))
	for i, c := range hl {
		parts[i] = strings.TrimSpace(c.Content)
	}
	return strings.Join(parts, " · ")
}
