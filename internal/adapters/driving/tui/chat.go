// Package tui provides the interactive chat interface over the
// question-answering pipeline.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// answerReceived carries a completed answer back into the update loop.
type answerReceived struct {
	answer *domain.Answer
}

// answerFailed carries a failed ask back into the update loop.
type answerFailed struct {
	err error
}

// entry is one question/answer exchange in the transcript.
type entry struct {
	question string
	answer   *domain.Answer
	err      error
}

// styles for the chat transcript.
var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	sourceStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	waitingStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
)

// Model is the bubbletea model for the chat session.
type Model struct {
	pipeline driving.Pipeline
	ctx      context.Context

	input      textinput.Model
	transcript viewport.Model

	entries []entry
	waiting bool
	width   int
	height  int
	ready   bool
}

// NewModel creates a chat model over the pipeline.
func NewModel(ctx context.Context, pipeline driving.Pipeline) *Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your documents..."
	ti.Focus()
	ti.CharLimit = 512

	return &Model{
		pipeline: pipeline,
		ctx:      ctx,
		input:    ti,
		width:    80,
		height:   24,
	}
}

// Init initialises the model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		m.transcript = viewport.New(msg.Width, msg.Height-3)
		m.transcript.SetContent(m.renderTranscript())
		m.transcript.GotoBottom()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case answerReceived:
		m.waiting = false
		if len(m.entries) > 0 {
			m.entries[len(m.entries)-1].answer = msg.answer
		}
		m.refreshTranscript()
		return m, nil

	case answerFailed:
		m.waiting = false
		if len(m.entries) > 0 {
			m.entries[len(m.entries)-1].err = msg.err
		}
		m.refreshTranscript()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		question := strings.TrimSpace(m.input.Value())
		if question == "" || m.waiting {
			return m, nil
		}
		m.entries = append(m.entries, entry{question: question})
		m.input.SetValue("")
		m.waiting = true
		m.refreshTranscript()
		return m, m.ask(question)

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the question through the pipeline off the update loop.
func (m *Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.pipeline.Ask(m.ctx, domain.Query{Question: question})
		if err != nil {
			return answerFailed{err: err}
		}
		return answerReceived{answer: answer}
	}
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
}

func (m *Model) renderTranscript() string {
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(questionStyle.Render("> " + e.question))
		b.WriteString("\n")

		switch {
		case e.err != nil:
			b.WriteString(errorStyle.Render(e.err.Error()))
			b.WriteString("\n")
		case e.answer == nil:
			b.WriteString(waitingStyle.Render("thinking..."))
			b.WriteString("\n")
		default:
			b.WriteString(answerStyle.Render(e.answer.Text))
			b.WriteString("\n")
			for j, src := range e.answer.Sources {
				title := src.DocumentTitle
				if title == "" {
					title = src.DocumentID
				}
				b.WriteString(sourceStyle.Render(
					fmt.Sprintf("  [%d] %s, fragment %d (%.2f)", j+1, title, src.Position, src.Score)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// View renders the chat.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.transcript.View() + "\n" + m.input.View() + "\n" +
		sourceStyle.Render("enter: ask · ↑/↓: scroll · esc: quit")
}

// Run starts the chat program and blocks until it exits.
func Run(ctx context.Context, pipeline driving.Pipeline) error {
	program := tea.NewProgram(NewModel(ctx, pipeline), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}
