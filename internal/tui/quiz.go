// Package tui is the terminal quiz: space reveals, y and n record, q quits.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/conorfennell/studymate/internal/quiz"
)

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6c7a89")
	danger = lipgloss.Color("#e53935")

	frontStyle = lipgloss.NewStyle().Bold(true)
	backStyle  = lipgloss.NewStyle().Foreground(accent)
	emptyStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)
	errStyle   = lipgloss.NewStyle().Foreground(danger)
	tallyStyle = lipgloss.NewStyle().Foreground(muted)
)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(accent).
	Padding(1, 4).
	Width(48).
	Align(lipgloss.Center)

type keyMap struct {
	Reveal key.Binding
	Right  key.Binding
	Wrong  key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reveal, k.Right, k.Wrong, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Reveal: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "show answer")),
		Right:  key.NewBinding(key.WithKeys("y", "r"), key.WithHelp("y", "right")),
		Wrong:  key.NewBinding(key.WithKeys("n", "w"), key.WithHelp("n", "wrong")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "close")),
	}
}

// Model drives a quiz.Engine from key presses.
type Model struct {
	ctx    context.Context
	engine *quiz.Engine
	keys   keyMap
	help   help.Model
	right  int
	wrong  int
	err    error
}

// New returns a model over engine. The quiz is started on Init.
func New(ctx context.Context, engine *quiz.Engine) Model {
	return Model{ctx: ctx, engine: engine, keys: defaultKeys(), help: help.New()}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	m.engine.Start()
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.engine.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reveal):
			if m.engine.State() == quiz.CardShown {
				m.err = m.engine.Reveal()
			}
		case key.Matches(msg, m.keys.Right):
			m.record(true)
		case key.Matches(msg, m.keys.Wrong):
			m.record(false)
		}
	}
	return m, nil
}

func (m *Model) record(correct bool) {
	if m.engine.State() != quiz.AnswerRevealed {
		return
	}
	if _, err := m.engine.Record(m.ctx, correct); err != nil {
		m.err = err
		return
	}
	m.err = nil
	if correct {
		m.right++
	} else {
		m.wrong++
	}
}

// Tally returns the number of right and wrong answers recorded this session.
func (m Model) Tally() (right, wrong int) {
	return m.right, m.wrong
}

// View implements tea.Model.
func (m Model) View() string {
	if m.engine.State() == quiz.Idle {
		return ""
	}
	var body strings.Builder
	switch m.engine.State() {
	case quiz.NoCards:
		body.WriteString(emptyStyle.Render(m.engine.Prompt()))
	case quiz.CardShown:
		body.WriteString(frontStyle.Render(m.engine.Prompt()))
	case quiz.AnswerRevealed:
		body.WriteString(frontStyle.Render(m.engine.Prompt()))
		body.WriteString("\n\n")
		body.WriteString(backStyle.Render(m.engine.Answer()))
	}

	var b strings.Builder
	b.WriteString(cardStyle.Render(body.String()))
	b.WriteString("\n")
	b.WriteString(tallyStyle.Render(fmt.Sprintf("right %d  wrong %d", m.right, m.wrong)))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
