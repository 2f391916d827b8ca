// Package study owns the in-memory study state: stacks, their cards, the review
// history and the reminder interval. Every mutation is persisted before it returns.
package study

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/conorfennell/studymate/internal/domain"
	"github.com/conorfennell/studymate/internal/knol"
	"github.com/conorfennell/studymate/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrStackNotFound   = errors.New("stack not found")
	ErrCardNotFound    = errors.New("card not found")
	ErrInvalidInterval = errors.New("notification interval must be zero or positive")
)

// Library is the application state. It is not safe for concurrent use.
type Library struct {
	store    storage.Store
	logger   *zap.Logger
	now      func() time.Time
	newID    func(time.Time) string
	stacks   []domain.Stack
	records  []domain.ReviewRecord
	interval int
}

// Option configures a Library.
type Option func(*Library)

// WithClock overrides the time source used for ids and review timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func(time.Time) string) Option {
	return func(l *Library) { l.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// Load reads the persisted state from store. Absent keys yield empty collections and a
// zero interval.
func Load(ctx context.Context, store storage.Store, opts ...Option) (*Library, error) {
	l := &Library{
		store:   store,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   knol.NewID,
		stacks:  []domain.Stack{},
		records: []domain.ReviewRecord{},
	}
	for _, opt := range opts {
		opt(l)
	}

	if _, err := storage.LoadJSON(ctx, store, domain.KeyStacks, &l.stacks); err != nil {
		return nil, fmt.Errorf("failed to load stacks: %w", err)
	}
	if _, err := storage.LoadJSON(ctx, store, domain.KeyReviewRecords, &l.records); err != nil {
		return nil, fmt.Errorf("failed to load review records: %w", err)
	}
	interval, err := storage.LoadInt(ctx, store, domain.KeyNotificationInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification interval: %w", err)
	}
	l.interval = interval

	for i := range l.stacks {
		if l.stacks[i].Cards == nil {
			l.stacks[i].Cards = []domain.Card{}
		}
	}
	if l.assignMissingIDs() {
		if err := storage.SaveJSON(ctx, store, domain.KeyStacks, l.stacks); err != nil {
			return nil, fmt.Errorf("failed to save assigned ids: %w", err)
		}
		l.logger.Info("Assigned ids to stored stacks and cards")
	}

	l.logger.Debug("Library loaded",
		zap.Int("stacks", len(l.stacks)),
		zap.Int("review_records", len(l.records)),
		zap.Int("notification_interval", l.interval),
	)
	return l, nil
}

// Stacks returns a copy of all stacks in display order.
func (l *Library) Stacks() []domain.Stack {
	out := make([]domain.Stack, len(l.stacks))
	for i, s := range l.stacks {
		out[i] = s.Clone()
	}
	return out
}

// Stack returns a copy of the stack with the given id.
func (l *Library) Stack(id string) (domain.Stack, error) {
	i := l.stackIndex(id)
	if i < 0 {
		return domain.Stack{}, fmt.Errorf("%w: %s", ErrStackNotFound, id)
	}
	return l.stacks[i].Clone(), nil
}

// StackAt resolves a display position to a stack. It exists for presentation layers
// that address stacks by position.
func (l *Library) StackAt(index int) (domain.Stack, error) {
	if index < 0 || index >= len(l.stacks) {
		return domain.Stack{}, fmt.Errorf("%w: no stack at position %d", ErrStackNotFound, index)
	}
	return l.stacks[index].Clone(), nil
}

// CardAt resolves a display position within a stack to a card.
func (l *Library) CardAt(stackID string, index int) (domain.Card, error) {
	i := l.stackIndex(stackID)
	if i < 0 {
		return domain.Card{}, fmt.Errorf("%w: %s", ErrStackNotFound, stackID)
	}
	cards := l.stacks[i].Cards
	if index < 0 || index >= len(cards) {
		return domain.Card{}, fmt.Errorf("%w: no card at position %d", ErrCardNotFound, index)
	}
	return cards[index], nil
}

// FindStackByName returns the first stack whose name matches case-insensitively.
func (l *Library) FindStackByName(name string) (domain.Stack, bool) {
	name = strings.TrimSpace(name)
	for _, s := range l.stacks {
		if strings.EqualFold(s.Name, name) {
			return s.Clone(), true
		}
	}
	return domain.Stack{}, false
}

// FindCard returns the card with the given id and the id of the stack holding it.
func (l *Library) FindCard(cardID string) (domain.Card, string, bool) {
	for _, s := range l.stacks {
		for _, c := range s.Cards {
			if c.ID == cardID {
				return c, s.ID, true
			}
		}
	}
	return domain.Card{}, "", false
}

// AddStack appends a new inactive, empty stack. A blank name is a no-op and
// returns a nil stack.
func (l *Library) AddStack(ctx context.Context, name string) (*domain.Stack, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	stack := domain.Stack{
		ID:    l.newID(l.now()),
		Name:  name,
		Cards: []domain.Card{},
	}
	prev := l.stacks
	l.stacks = append(l.Stacks(), stack)
	if err := l.saveStacks(ctx, prev); err != nil {
		return nil, err
	}

	l.logger.Info("Stack added", zap.String("stack_id", stack.ID), zap.String("name", stack.Name))
	return &stack, nil
}

// RenameStack changes a stack's name. A blank name is a no-op.
func (l *Library) RenameStack(ctx context.Context, stackID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return l.mutateStack(ctx, stackID, func(s *domain.Stack) { s.Name = name })
}

// DeleteStack removes a stack and its cards. Review records are kept.
func (l *Library) DeleteStack(ctx context.Context, stackID string) error {
	i := l.stackIndex(stackID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStackNotFound, stackID)
	}

	prev := l.stacks
	next := l.Stacks()
	l.stacks = append(next[:i], next[i+1:]...)
	if err := l.saveStacks(ctx, prev); err != nil {
		return err
	}

	l.logger.Info("Stack deleted", zap.String("stack_id", stackID))
	return nil
}

// SetStackActive marks a stack as eligible, or not, for quiz draws.
func (l *Library) SetStackActive(ctx context.Context, stackID string, active bool) error {
	return l.mutateStack(ctx, stackID, func(s *domain.Stack) { s.IsActive = active })
}

// AddCard appends a card to a stack. A blank front or back is a no-op and returns
// a nil card.
func (l *Library) AddCard(ctx context.Context, stackID, front, back string) (*domain.Card, error) {
	front, back = strings.TrimSpace(front), strings.TrimSpace(back)
	if front == "" || back == "" {
		return nil, nil
	}

	card := domain.Card{ID: l.newID(l.now()), Front: front, Back: back}
	if err := l.mutateStack(ctx, stackID, func(s *domain.Stack) {
		s.Cards = append(s.Cards, card)
	}); err != nil {
		return nil, err
	}

	l.logger.Debug("Card added", zap.String("stack_id", stackID), zap.String("card_id", card.ID))
	return &card, nil
}

// DeleteCard removes a card from a stack. Review records referencing it are kept.
func (l *Library) DeleteCard(ctx context.Context, stackID, cardID string) error {
	i := l.stackIndex(stackID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStackNotFound, stackID)
	}
	j := cardIndex(l.stacks[i], cardID)
	if j < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}

	return l.mutateStack(ctx, stackID, func(s *domain.Stack) {
		s.Cards = append(s.Cards[:j], s.Cards[j+1:]...)
	})
}

// ActivePool flattens the cards of all active stacks, in stack then card order.
func (l *Library) ActivePool() []domain.Card {
	var pool []domain.Card
	for _, s := range l.stacks {
		if s.IsActive {
			pool = append(pool, s.Cards...)
		}
	}
	return pool
}

// Records returns a copy of the review history in the order it was written.
func (l *Library) Records() []domain.ReviewRecord {
	out := make([]domain.ReviewRecord, len(l.records))
	copy(out, l.records)
	return out
}

// RecordReview appends one review outcome for cardID.
func (l *Library) RecordReview(ctx context.Context, cardID string, correct bool) (domain.ReviewRecord, error) {
	now := l.now()
	record := domain.ReviewRecord{
		ID:         l.newID(now),
		CardID:     cardID,
		ReviewedAt: now,
		WasCorrect: correct,
	}

	next := make([]domain.ReviewRecord, len(l.records), len(l.records)+1)
	copy(next, l.records)
	next = append(next, record)
	if err := storage.SaveJSON(ctx, l.store, domain.KeyReviewRecords, next); err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("failed to save review records: %w", err)
	}
	l.records = next

	l.logger.Debug("Review recorded", zap.String("card_id", cardID), zap.Bool("correct", correct))
	return record, nil
}

// NotificationInterval returns the reminder interval in minutes. 0 means disabled.
func (l *Library) NotificationInterval() int {
	return l.interval
}

// SetNotificationInterval persists the reminder interval in minutes.
func (l *Library) SetNotificationInterval(ctx context.Context, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, minutes)
	}
	if err := storage.SaveInt(ctx, l.store, domain.KeyNotificationInterval, minutes); err != nil {
		return fmt.Errorf("failed to save notification interval: %w", err)
	}
	l.interval = minutes
	return nil
}

// assignMissingIDs gives a fresh id to every stack and card whose id is empty or
// already taken. It reports whether anything changed.
func (l *Library) assignMissingIDs() bool {
	seen := make(map[string]bool)
	changed := false
	fresh := func(id string) string {
		if id != "" && !seen[id] {
			seen[id] = true
			return id
		}
		changed = true
		for {
			id = l.newID(l.now())
			if !seen[id] {
				seen[id] = true
				return id
			}
		}
	}
	for i := range l.stacks {
		l.stacks[i].ID = fresh(l.stacks[i].ID)
		for j := range l.stacks[i].Cards {
			l.stacks[i].Cards[j].ID = fresh(l.stacks[i].Cards[j].ID)
		}
	}
	return changed
}

func (l *Library) stackIndex(id string) int {
	for i, s := range l.stacks {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func cardIndex(s domain.Stack, id string) int {
	for i, c := range s.Cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// mutateStack applies fn to a copy of the collection and persists it. On a failed write
// the previous collection is restored so memory matches the store.
func (l *Library) mutateStack(ctx context.Context, stackID string, fn func(*domain.Stack)) error {
	i := l.stackIndex(stackID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStackNotFound, stackID)
	}

	prev := l.stacks
	next := l.Stacks()
	fn(&next[i])
	l.stacks = next
	return l.saveStacks(ctx, prev)
}

func (l *Library) saveStacks(ctx context.Context, prev []domain.Stack) error {
	if err := storage.SaveJSON(ctx, l.store, domain.KeyStacks, l.stacks); err != nil {
		l.stacks = prev
		return fmt.Errorf("failed to save stacks: %w", err)
	}
	return nil
}
