package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumechat/internal/domain"
)

type fakeChat struct {
	answer domain.Answer
	err    error
	asked  []string
}

func (f *fakeChat) Answer(_ context.Context, msg string, _ bool) (domain.Answer, error) {
	f.asked = append(f.asked, msg)
	return f.answer, f.err
}

func sized(t *testing.T, svc ChatPort) Model {
	t.Helper()
	m := New(context.Background(), svc, "Built Go services")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func ask(t *testing.T, m Model, q string) Model {
	t.Helper()
	m.input.SetValue(q)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func TestModel_AnswerWithCitations(t *testing.T) {
	svc := &fakeChat{answer: domain.Answer{
		CanAnswer: true,
		Text:      "Acme Corp | SWE\n- Built X\n- Built Y",
		Citations: []domain.Citation{
			{ChunkID: 2, Section: "EXPERIENCE", Snippet: "Built X"},
			{ChunkID: 3, Section: "EXPERIENCE", Snippet: "Built Y"},
		},
	}}
	m := ask(t, sized(t, svc), "what did you build")

	require.Equal(t, []string{"what did you build"}, svc.asked)
	assert.Equal(t, "2 citations, up/down to browse", m.status)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.renderAnswer(), "Citation 1/2  EXPERIENCE #2")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.renderAnswer(), "Citation 2/2  EXPERIENCE #3")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
}

func TestModel_FactAndRefusal(t *testing.T) {
	svc := &fakeChat{answer: domain.Answer{CanAnswer: true, Text: "a@b.com", UsedFields: []string{"email"}}}
	m := ask(t, sized(t, svc), "email?")
	assert.Equal(t, "From profile: email", m.status)
	assert.Equal(t, "a@b.com", m.renderAnswer())

	svc.answer = domain.Answer{Text: "I don’t have that information in my resume."}
	m = ask(t, m, "pets?")
	assert.Equal(t, "No answer.", m.status)
}

func TestModel_ErrorStatus(t *testing.T) {
	svc := &fakeChat{err: errors.New("index unavailable")}
	m := ask(t, sized(t, svc), "anything")

	assert.Equal(t, "Error: index unavailable", m.status)
	assert.Nil(t, m.answer)
	assert.Equal(t, "No answer yet.", m.renderAnswer())
	assert.Equal(t, "anything", m.input.Value())
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(context.Background(), &fakeChat{}, "")
	assert.Equal(t, "Loading...", m.View())

	m = sized(t, &fakeChat{})
	assert.Contains(t, m.View(), "Resume Chat")
}

func TestModel_Quit(t *testing.T) {
	m := sized(t, &fakeChat{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestHighlightBestSentence(t *testing.T) {
	assert.Equal(t, "", highlightBestSentence("", "go"))
	assert.Equal(t, "Built X. Wrote Y.", highlightBestSentence("Built X. Wrote Y.", "the"))
	out := highlightBestSentence("Built X. Wrote Go tooling.", "go tooling")
	assert.Contains(t, out, "Built X.")
	assert.Contains(t, out, "Wrote Go tooling.")
}
