package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Card is a single front/back pair. It belongs to exactly one Stack.
type Card struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Stack is a named, ordered deck of cards. Card order is insertion order.
type Stack struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	Cards    []Card `json:"cards"`
}

// Clone returns a copy of the stack that shares no card storage with s.
func (s Stack) Clone() Stack {
	cards := make([]Card, len(s.Cards))
	copy(cards, s.Cards)
	s.Cards = cards
	return s
}

// ReviewRecord is an append-only log entry for one quiz answer.
// CardID is a weak reference: the card may have been deleted since.
type ReviewRecord struct {
	ID         string
	CardID     string
	ReviewedAt time.Time
	WasCorrect bool
}

// reviewRecordJSON is the persisted layout: millisecond timestamps and a 1/0 outcome.
type reviewRecordJSON struct {
	ID         string          `json:"id"`
	CardID     string          `json:"card_id"`
	ReviewedAt int64           `json:"reviewed_at"`
	WasCorrect json.RawMessage `json:"was_correct"`
}

// MarshalJSON implements json.Marshaler.
func (r ReviewRecord) MarshalJSON() ([]byte, error) {
	outcome := json.RawMessage("0")
	if r.WasCorrect {
		outcome = json.RawMessage("1")
	}
	return json.Marshal(reviewRecordJSON{
		ID:         r.ID,
		CardID:     r.CardID,
		ReviewedAt: r.ReviewedAt.UnixMilli(),
		WasCorrect: outcome,
	})
}

// UnmarshalJSON implements json.Unmarshaler. was_correct may be 1/0 or a boolean.
func (r *ReviewRecord) UnmarshalJSON(data []byte) error {
	var raw reviewRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var correct bool
	switch string(raw.WasCorrect) {
	case "1", "true":
		correct = true
	case "0", "false", "", "null":
		correct = false
	default:
		return fmt.Errorf("invalid was_correct value %s", raw.WasCorrect)
	}

	*r = ReviewRecord{
		ID:         raw.ID,
		CardID:     raw.CardID,
		ReviewedAt: time.UnixMilli(raw.ReviewedAt),
		WasCorrect: correct,
	}
	return nil
}
