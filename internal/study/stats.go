package study

import (
	"sort"
	"time"
)

// CardStats summarizes the review history of one card id.
type CardStats struct {
	CardID       string
	Front        string
	StackName    string
	Reviews      int
	Correct      int
	LastReviewed time.Time
	// Dangling is true when the card has since been deleted.
	Dangling bool
}

// Accuracy returns the share of correct answers, or 0 with no reviews.
func (c CardStats) Accuracy() float64 {
	if c.Reviews == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Reviews)
}

// Stats aggregates the review history per card id, most recently reviewed first.
func (l *Library) Stats() []CardStats {
	byCard := make(map[string]*CardStats)
	for _, r := range l.records {
		cs, ok := byCard[r.CardID]
		if !ok {
			cs = &CardStats{CardID: r.CardID, Dangling: true}
			byCard[r.CardID] = cs
		}
		cs.Reviews++
		if r.WasCorrect {
			cs.Correct++
		}
		if r.ReviewedAt.After(cs.LastReviewed) {
			cs.LastReviewed = r.ReviewedAt
		}
	}

	for _, s := range l.stacks {
		for _, c := range s.Cards {
			if cs, ok := byCard[c.ID]; ok {
				cs.Front = c.Front
				cs.StackName = s.Name
				cs.Dangling = false
			}
		}
	}

	out := make([]CardStats, 0, len(byCard))
	for _, cs := range byCard {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastReviewed.Equal(out[j].LastReviewed) {
			return out[i].LastReviewed.After(out[j].LastReviewed)
		}
		return out[i].CardID < out[j].CardID
	})
	return out
}
