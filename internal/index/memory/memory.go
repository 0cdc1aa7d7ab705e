package memory

import (
	"context"
	"sort"
	"sync"

	"resumechat/internal/domain"
	"resumechat/internal/textsim"
)

// generation is one immutable, fully built corpus.
type generation struct {
	profile  []byte
	rows     []domain.Row
	model    *textsim.Vectorizer
	vectors  []textsim.Vector
	trigrams []map[string]struct{}
}

// Index is an in-process search index. Rank search scores chunks by TF-IDF
// cosine, similarity search by trigram similarity. A corpus replace builds a
// new generation off-lock and swaps it in, so readers never see a partial corpus.
type Index struct {
	mu  sync.RWMutex
	gen *generation
}

func NewIndex() *Index { return &Index{} }

func (s *Index) ReplaceCorpus(_ context.Context, corpus domain.Corpus) error {
	gen, err := build(corpus)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.gen = gen
	s.mu.Unlock()
	return nil
}

func build(corpus domain.Corpus) (*generation, error) {
	gen := &generation{
		profile:  append([]byte(nil), corpus.Profile...),
		rows:     make([]domain.Row, len(corpus.Chunks)),
		vectors:  make([]textsim.Vector, len(corpus.Chunks)),
		trigrams: make([]map[string]struct{}, len(corpus.Chunks)),
	}
	texts := make([]string, len(corpus.Chunks))
	for i, c := range corpus.Chunks {
		// ids restart at 1 for every generation
		gen.rows[i] = domain.Row{ID: int64(i + 1), Section: c.Section, Content: c.Content, Type: c.Type}
		texts[i] = c.Content
		gen.trigrams[i] = textsim.Trigrams(c.Content)
	}
	if len(texts) == 0 {
		return gen, nil
	}
	model, err := textsim.NewVectorizer(texts)
	if err != nil {
		return nil, err
	}
	gen.model = model
	for i, t := range texts {
		gen.vectors[i] = model.Vector(t)
	}
	return gen, nil
}

func (s *Index) current() *generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Index) LatestProfile(_ context.Context) ([]byte, error) {
	gen := s.current()
	if gen == nil || len(gen.profile) == 0 {
		return nil, domain.ErrNoProfile
	}
	return gen.profile, nil
}

func (s *Index) RankSearch(_ context.Context, query string, limit int) ([]domain.Row, error) {
	gen := s.current()
	if gen == nil || gen.model == nil {
		return nil, nil
	}
	q := gen.model.Vector(query)
	if len(q) == 0 {
		return nil, nil
	}
	return topK(gen.rows, limit, func(i int) float64 {
		return textsim.Cosine(q, gen.vectors[i])
	}), nil
}

func (s *Index) SimilaritySearch(_ context.Context, query string, limit int) ([]domain.Row, error) {
	gen := s.current()
	if gen == nil {
		return nil, nil
	}
	q := textsim.Trigrams(query)
	return topK(gen.rows, limit, func(i int) float64 {
		return textsim.SetSimilarity(q, gen.trigrams[i])
	}), nil
}

func (s *Index) Close() error { return nil }

// topK scores every row, keeps positive scores and returns the best limit rows.
// Ties keep document order.
func topK(rows []domain.Row, limit int, score func(i int) float64) []domain.Row {
	out := make([]domain.Row, 0, len(rows))
	for i, r := range rows {
		if sc := score(i); sc > 0 {
			r.Score = sc
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
