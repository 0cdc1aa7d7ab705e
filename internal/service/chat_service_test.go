package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumechat/internal/domain"
	"resumechat/internal/index/memory"
	"resumechat/internal/retrieval"
)

// stubIndex answers from fixed per-query rows and records calls.
type stubIndex struct {
	rank      map[string][]domain.Row
	similar   map[string][]domain.Row
	profile   []byte
	err       error
	rankCalls []string
	simCalls  []string
}

func (s *stubIndex) RankSearch(_ context.Context, q string, _ int) ([]domain.Row, error) {
	s.rankCalls = append(s.rankCalls, q)
	if s.err != nil {
		return nil, s.err
	}
	return s.rank[q], nil
}

func (s *stubIndex) SimilaritySearch(_ context.Context, q string, _ int) ([]domain.Row, error) {
	s.simCalls = append(s.simCalls, q)
	return s.similar[q], nil
}

func (s *stubIndex) LatestProfile(context.Context) ([]byte, error) {
	if s.profile == nil {
		return nil, domain.ErrNoProfile
	}
	return s.profile, nil
}

type recorder struct {
	routes []string
	tiers  []string
}

func (r *recorder) RecordAnswer(route string) { r.routes = append(r.routes, route) }
func (r *recorder) RecordTier(tier string)    { r.tiers = append(r.tiers, tier) }

func TestChatService_EmptyQuery(t *testing.T) {
	rec := &recorder{}
	idx := &stubIndex{}
	svc := NewChatService(idx, Options{Recorder: rec})

	for _, msg := range []string{"", "   \t\n"} {
		a, err := svc.Answer(context.Background(), msg, false)
		require.NoError(t, err)
		assert.False(t, a.CanAnswer)
		assert.Equal(t, EmptyQueryMessage, a.Text)
		assert.Empty(t, a.Citations)
	}
	assert.Empty(t, idx.rankCalls)
	assert.Equal(t, []string{"empty", "empty"}, rec.routes)
}

func TestChatService_FactLookup(t *testing.T) {
	t.Run("Should answer from the profile", func(t *testing.T) {
		idx := &stubIndex{profile: []byte(`{"email":"a@b.com"}`)}
		svc := NewChatService(idx, Options{})

		a, err := svc.Answer(context.Background(), "What is your email?", false)
		require.NoError(t, err)
		assert.True(t, a.CanAnswer)
		assert.Equal(t, "a@b.com", a.Text)
		assert.Equal(t, []string{"email"}, a.UsedFields)
		assert.Empty(t, a.Citations)
		assert.Empty(t, idx.rankCalls)
	})

	t.Run("Should refuse and record the label when the field is absent", func(t *testing.T) {
		rec := &recorder{}
		idx := &stubIndex{profile: []byte(`{"email":"a@b.com","education":[]}`)}
		svc := NewChatService(idx, Options{Recorder: rec})

		a, err := svc.Answer(context.Background(), "What is your GPA?", false)
		require.NoError(t, err)
		assert.False(t, a.CanAnswer)
		assert.Equal(t, NotFoundMessage, a.Text)
		assert.Equal(t, []string{"education.gpa"}, a.UsedFields)
		assert.Equal(t, []string{"fact_missing"}, rec.routes)
	})

	t.Run("Should render arrays as bullet lines", func(t *testing.T) {
		idx := &stubIndex{profile: []byte(`{"certifications":["CKA","AWS SAA"]}`)}
		svc := NewChatService(idx, Options{})

		a, err := svc.Answer(context.Background(), "Any certifications?", false)
		require.NoError(t, err)
		assert.Equal(t, "- CKA\n- AWS SAA", a.Text)
	})

	t.Run("Should fail when no profile was ingested", func(t *testing.T) {
		svc := NewChatService(&stubIndex{}, Options{})

		_, err := svc.Answer(context.Background(), "What is your name?", false)
		assert.ErrorIs(t, err, domain.ErrNoProfile)
	})

	t.Run("Should fail on a corrupt profile", func(t *testing.T) {
		svc := NewChatService(&stubIndex{profile: []byte(`{"name":`)}, Options{})

		_, err := svc.Answer(context.Background(), "What is your name?", false)
		assert.ErrorIs(t, err, domain.ErrInvalidProfile)
	})
}

func TestChatService_Retrieval(t *testing.T) {
	rows := []domain.Row{
		{ID: 2, Section: "EXPERIENCE", Content: "Acme Corp | SWE - Built Kubernetes operators", Type: domain.ChunkBullet, Score: 0.09},
		{ID: 1, Section: "EXPERIENCE", Content: "Acme Corp | SWE", Type: domain.ChunkHeader, Score: 0.05},
	}

	t.Run("Should return rank hits above the primary threshold unfiltered", func(t *testing.T) {
		rec := &recorder{}
		idx := &stubIndex{rank: map[string][]domain.Row{"kubernetes operators": rows}}
		svc := NewChatService(idx, Options{Recorder: rec})

		a, err := svc.Answer(context.Background(), "kubernetes operators", true)
		require.NoError(t, err)
		assert.True(t, a.CanAnswer)
		assert.Equal(t, "Acme Corp | SWE\n- Built Kubernetes operators", a.Text)
		require.Len(t, a.Citations, 1)
		assert.Equal(t, domain.Citation{ChunkID: 2, Section: "EXPERIENCE", Snippet: "Built Kubernetes operators"}, a.Citations[0])
		require.Len(t, a.DebugHits, 2)
		assert.Equal(t, domain.MethodExact, a.DebugHits[0].Method)
		assert.Empty(t, idx.simCalls)
		assert.Equal(t, []string{"exact"}, rec.tiers)
		assert.Equal(t, []string{"retrieval"}, rec.routes)
	})

	t.Run("Should omit debug hits unless asked", func(t *testing.T) {
		idx := &stubIndex{rank: map[string][]domain.Row{"kubernetes operators": rows}}
		svc := NewChatService(idx, Options{})

		a, err := svc.Answer(context.Background(), "kubernetes operators", false)
		require.NoError(t, err)
		assert.Nil(t, a.DebugHits)
	})

	t.Run("Should use fuzzy hits when rank scores are weak", func(t *testing.T) {
		idx := &stubIndex{
			rank: map[string][]domain.Row{"kubernets": {{ID: 5, Section: "SKILLS", Content: "Go", Type: domain.ChunkLine, Score: 0.001}}},
			similar: map[string][]domain.Row{"kubernets": {
				{ID: 2, Section: "EXPERIENCE", Content: "Acme Corp | SWE - Built Kubernetes operators", Type: domain.ChunkBullet, Score: 0.4},
			}},
		}
		svc := NewChatService(idx, Options{})

		a, err := svc.Answer(context.Background(), "kubernets", true)
		require.NoError(t, err)
		assert.True(t, a.CanAnswer)
		require.Len(t, a.DebugHits, 1)
		assert.Equal(t, domain.MethodFuzzy, a.DebugHits[0].Method)
		assert.Equal(t, int64(2), a.Citations[0].ChunkID)
	})

	t.Run("Should retry once with the expanded query", func(t *testing.T) {
		rec := &recorder{}
		idx := &stubIndex{rank: map[string][]domain.Row{
			"Kubernetes operators": rows,
			"k8s operators":        {{ID: 9, Section: "SKILLS", Content: "noise", Type: domain.ChunkLine, Score: 0.001}},
		}}
		svc := NewChatService(idx, Options{Recorder: rec})

		a, err := svc.Answer(context.Background(), "k8s operators", false)
		require.NoError(t, err)
		assert.True(t, a.CanAnswer)
		require.Len(t, a.Citations, 1)
		assert.Equal(t, int64(2), a.Citations[0].ChunkID)
		assert.Equal(t, []string{"k8s operators", "Kubernetes operators"}, idx.rankCalls)
		assert.Equal(t, []string{"none", "exact"}, rec.tiers)
		assert.Equal(t, []string{"expanded"}, rec.routes)
	})

	t.Run("Should refuse without retrying when nothing expands", func(t *testing.T) {
		rec := &recorder{}
		idx := &stubIndex{}
		svc := NewChatService(idx, Options{Recorder: rec})

		a, err := svc.Answer(context.Background(), "quantum chromodynamics", true)
		require.NoError(t, err)
		assert.False(t, a.CanAnswer)
		assert.Equal(t, NotFoundMessage, a.Text)
		assert.Empty(t, a.Citations)
		assert.Empty(t, a.UsedFields)
		assert.Len(t, idx.rankCalls, 1)
		assert.Equal(t, []string{"refusal"}, rec.routes)
	})

	t.Run("Should refuse when the expanded query also misses", func(t *testing.T) {
		idx := &stubIndex{}
		svc := NewChatService(idx, Options{})

		a, err := svc.Answer(context.Background(), "gcp projects", false)
		require.NoError(t, err)
		assert.False(t, a.CanAnswer)
		assert.Len(t, idx.rankCalls, 2)
	})

	t.Run("Should propagate index failures", func(t *testing.T) {
		boom := errors.New("connection refused")
		svc := NewChatService(&stubIndex{err: boom}, Options{})

		_, err := svc.Answer(context.Background(), "kubernetes", false)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Should honor configured thresholds", func(t *testing.T) {
		idx := &stubIndex{rank: map[string][]domain.Row{"kubernetes operators": rows}}
		th := retrieval.Thresholds{Primary: 0.5, Fuzzy: 0.5, Salvage: 0.5}
		svc := NewChatService(idx, Options{Thresholds: &th})

		a, err := svc.Answer(context.Background(), "kubernetes operators", false)
		require.NoError(t, err)
		assert.False(t, a.CanAnswer)
	})
}

func TestChatService_Respond(t *testing.T) {
	idx := &stubIndex{profile: []byte(`{"name":"Jane Doe"}`)}
	svc := NewChatService(idx, Options{})

	resp, err := svc.Respond(context.Background(), domain.ChatRequest{Message: "What's your name?"})
	require.NoError(t, err)
	assert.True(t, resp.CanAnswer)
	assert.Equal(t, "Jane Doe", resp.Answer)
	assert.NotNil(t, resp.Citations)
	assert.Equal(t, []string{"name"}, resp.UsedFields)
	assert.Nil(t, resp.DebugHits)

	resp, err = svc.Respond(context.Background(), domain.ChatRequest{Message: ""})
	require.NoError(t, err)
	assert.NotNil(t, resp.UsedFields)
	assert.Equal(t, EmptyQueryMessage, resp.Answer)
}

func TestChatService_RespondDebugRefusalKeepsHitsKey(t *testing.T) {
	svc := NewChatService(&stubIndex{}, Options{})

	resp, err := svc.Respond(context.Background(), domain.ChatRequest{Message: "quantum chromodynamics", Debug: true})
	require.NoError(t, err)
	assert.False(t, resp.CanAnswer)
	require.NotNil(t, resp.DebugHits)
	assert.Empty(t, *resp.DebugHits)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"debugHits":[]`)

	resp, err = svc.Respond(context.Background(), domain.ChatRequest{Message: "quantum chromodynamics"})
	require.NoError(t, err)
	data, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "debugHits")
}

func writeInputs(t *testing.T, resume, profile string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	rp := filepath.Join(dir, "resume.txt")
	pp := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(rp, []byte(resume), 0o600))
	require.NoError(t, os.WriteFile(pp, []byte(profile), 0o600))
	return rp, pp
}

func TestChatService_EndToEndInMemory(t *testing.T) {
	resume := "Jane Doe\n\nEXPERIENCE\nAcme Corp | SWE\n- Designed React dashboards\n- Built Kubernetes operators\n\nSKILLS\nGo, PostgreSQL"
	rp, pp := writeInputs(t, resume, `{"name":"Jane Doe","email":"jane@example.com"}`)

	idx := memory.NewIndex()
	report, err := NewIngestor(idx).Ingest(context.Background(), rp, pp)
	require.NoError(t, err)
	assert.Equal(t, "resume.txt", report.Source)
	assert.Equal(t, 2, report.ByType[domain.ChunkBullet])
	assert.Equal(t, 1, report.ByType[domain.ChunkHeader])

	svc := NewChatService(idx, Options{})
	ctx := context.Background()

	a, err := svc.Answer(ctx, "Which dashboards did you design?", false)
	require.NoError(t, err)
	assert.True(t, a.CanAnswer)
	assert.Equal(t, "Acme Corp | SWE\n- Designed React dashboards", a.Text)
	require.Len(t, a.Citations, 1)
	assert.Equal(t, "EXPERIENCE", a.Citations[0].Section)

	a, err = svc.Answer(ctx, "What is your email?", false)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", a.Text)

	a, err = svc.Answer(ctx, "k8s", false)
	require.NoError(t, err)
	assert.True(t, a.CanAnswer)
	assert.Contains(t, a.Text, "Built Kubernetes operators")
}
