package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/conorfennell/studymate/internal/domain"
	"github.com/conorfennell/studymate/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deck struct {
	cards   []domain.Card
	results []bool
	fail    error
}

func (d *deck) ActivePool() []domain.Card { return d.cards }

func (d *deck) RecordReview(_ context.Context, cardID string, correct bool) (domain.ReviewRecord, error) {
	if d.fail != nil {
		return domain.ReviewRecord{}, d.fail
	}
	d.results = append(d.results, correct)
	return domain.ReviewRecord{CardID: cardID, WasCorrect: correct}, nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func start(t *testing.T, d *deck) (Model, *quiz.Engine) {
	t.Helper()
	engine := quiz.New(d, d)
	m := New(context.Background(), engine)
	require.Nil(t, m.Init())
	return m, engine
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_Flow(t *testing.T) {
	d := &deck{cards: []domain.Card{{ID: "c1", Front: "hola", Back: "hello"}}}
	m, engine := start(t, d)

	assert.Equal(t, quiz.CardShown, engine.State())
	assert.Contains(t, m.View(), "hola")
	assert.NotContains(t, m.View(), "hello")

	m, _ = update(m, runes("y"))
	assert.Empty(t, d.results, "recording needs the answer shown first")

	m, _ = update(m, space)
	assert.Equal(t, quiz.AnswerRevealed, engine.State())
	assert.Contains(t, m.View(), "hello")

	m, _ = update(m, runes("y"))
	m, _ = update(m, space)
	m, _ = update(m, runes("n"))
	assert.Equal(t, []bool{true, false}, d.results)

	right, wrong := m.Tally()
	assert.Equal(t, 1, right)
	assert.Equal(t, 1, wrong)
	assert.Contains(t, m.View(), "right 1  wrong 1")
	assert.Equal(t, quiz.CardShown, engine.State())

	m, cmd := update(m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, quiz.Idle, engine.State())
	assert.Empty(t, m.View())
}

func TestModel_NoCards(t *testing.T) {
	m, engine := start(t, &deck{})
	assert.Equal(t, quiz.NoCards, engine.State())
	assert.Contains(t, m.View(), quiz.NoActiveCards)

	m, _ = update(m, space)
	assert.Equal(t, quiz.NoCards, engine.State())
	assert.NotContains(t, m.View(), "error")
}

func TestModel_RecordError(t *testing.T) {
	d := &deck{cards: []domain.Card{{ID: "c1", Front: "hola", Back: "hello"}}, fail: errors.New("disk full")}
	m, engine := start(t, d)

	m, _ = update(m, space)
	m, _ = update(m, runes("y"))
	assert.Equal(t, quiz.AnswerRevealed, engine.State())
	assert.Contains(t, m.View(), "disk full")

	d.fail = nil
	m, _ = update(m, runes("y"))
	assert.Equal(t, []bool{true}, d.results)
	assert.NotContains(t, m.View(), "disk full")
}
