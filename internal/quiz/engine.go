// Package quiz draws random cards from the active pool and records answers.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/conorfennell/studymate/internal/domain"
)

// NoActiveCards is shown in place of a card when the pool is empty.
const NoActiveCards = "No active cards"

// ErrInvalidTransition is returned when an action isn't available in the current state.
var ErrInvalidTransition = errors.New("invalid quiz transition")

// State is a quiz state.
type State int

const (
	// Idle means the quiz is closed.
	Idle State = iota
	// NoCards means a draw found an empty pool. Nothing can be revealed or recorded.
	NoCards
	// CardShown shows a card's front only.
	CardShown
	// AnswerRevealed shows both sides and awaits an outcome.
	AnswerRevealed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case NoCards:
		return "no-cards"
	case CardShown:
		return "card-shown"
	case AnswerRevealed:
		return "answer-revealed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PoolSource supplies the cards eligible for a draw.
type PoolSource interface {
	ActivePool() []domain.Card
}

// Recorder persists an answer outcome.
type Recorder interface {
	RecordReview(ctx context.Context, cardID string, correct bool) (domain.ReviewRecord, error)
}

// Engine is the quiz state machine. The pool is recomputed on every draw, so stacks
// toggled between answers take effect on the next card.
type Engine struct {
	pool     PoolSource
	recorder Recorder
	intn     func(n int) int
	state    State
	current  domain.Card
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used to pick cards.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.intn = r.IntN }
}

// New creates an idle engine.
func New(pool PoolSource, recorder Recorder, opts ...Option) *Engine {
	e := &Engine{
		pool:     pool,
		recorder: recorder,
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start opens the quiz and draws the first card.
func (e *Engine) Start() State {
	return e.draw()
}

// Reveal shows the back of the current card.
func (e *Engine) Reveal() error {
	if e.state != CardShown {
		return fmt.Errorf("%w: reveal from %s", ErrInvalidTransition, e.state)
	}
	e.state = AnswerRevealed
	return nil
}

// Record appends a review for the current card and draws the next one.
// On a failed write the answer stays revealed so it can be retried.
func (e *Engine) Record(ctx context.Context, correct bool) (domain.ReviewRecord, error) {
	if e.state != AnswerRevealed {
		return domain.ReviewRecord{}, fmt.Errorf("%w: record from %s", ErrInvalidTransition, e.state)
	}
	rec, err := e.recorder.RecordReview(ctx, e.current.ID, correct)
	if err != nil {
		return domain.ReviewRecord{}, err
	}
	e.draw()
	return rec, nil
}

// Close returns to Idle without side effects.
func (e *Engine) Close() {
	e.state = Idle
	e.current = domain.Card{}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Current returns the card on display, if any.
func (e *Engine) Current() (domain.Card, bool) {
	if e.state != CardShown && e.state != AnswerRevealed {
		return domain.Card{}, false
	}
	return e.current, true
}

// Prompt is the text on the front of the quiz: the card front or NoActiveCards.
func (e *Engine) Prompt() string {
	if c, ok := e.Current(); ok {
		return c.Front
	}
	return NoActiveCards
}

// Answer is the card back once revealed, empty otherwise.
func (e *Engine) Answer() string {
	if e.state != AnswerRevealed {
		return ""
	}
	return e.current.Back
}

func (e *Engine) draw() State {
	cards := e.pool.ActivePool()
	if len(cards) == 0 {
		e.state = NoCards
		e.current = domain.Card{}
		return e.state
	}
	e.current = cards[e.intn(len(cards))]
	e.state = CardShown
	return e.state
}
