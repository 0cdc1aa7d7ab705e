package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"resumechat/internal/domain"
	"resumechat/internal/textsim"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	Answer(ctx context.Context, message string, debug bool) (domain.Answer, error)
}

// Model is the Bubble Tea model for the chat UI.
type Model struct {
	ctx       context.Context
	service   ChatPort
	input     textinput.Model
	viewport  viewport.Model
	answer    *domain.Answer
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a chat model. summary is shown under the title.
func New(ctx context.Context, service ChatPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the resume and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, service: service, input: ti, viewport: vp, summary: summary, status: "Ready."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around answer and query boxes
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := m.input.Value()
			a, err := m.service.Answer(m.ctx, q, false)
			if err != nil {
				m.status = "Error: " + err.Error()
				m.answer = nil
			} else {
				m.answer = &a
				m.cursor = 0
				m.lastQuery = strings.TrimSpace(q)
				m.status = statusFor(a)
				m.input.SetValue("")
			}
			m.viewport.SetContent(m.renderAnswer())
			return m, nil
		case "down":
			if n := m.citationCount(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if n := m.citationCount(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Resume Chat")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) citationCount() int {
	if m.answer == nil {
		return 0
	}
	return len(m.answer.Citations)
}

func statusFor(a domain.Answer) string {
	switch {
	case !a.CanAnswer:
		return "No answer."
	case len(a.Citations) > 0:
		return fmt.Sprintf("%d citations, up/down to browse", len(a.Citations))
	case len(a.UsedFields) > 0:
		return "From profile: " + strings.Join(a.UsedFields, ", ")
	default:
		return "Answered."
	}
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}
	a := m.answer
	if len(a.Citations) == 0 {
		return a.Text
	}
	c := a.Citations[m.cursor]
	title := fmt.Sprintf("Citation %d/%d  %s #%d", m.cursor+1, len(a.Citations), c.Section, c.ChunkID)
	return a.Text + "\n\n" + citationStyle.Render(title) + "\n" + highlightBestSentence(c.Snippet, m.lastQuery)
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	citationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := textsim.Terms(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range textsim.Tokens(sentence) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
