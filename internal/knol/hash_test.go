package knol

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	t.Run("starts with the base36 timestamp", func(t *testing.T) {
		id := NewID(now)
		prefix := strconv.FormatInt(now.UnixMilli(), 36)
		require.True(t, strings.HasPrefix(id, prefix), "id %q should start with %q", id, prefix)
		assert.Len(t, id, len(prefix)+6)
	})

	t.Run("ids generated at the same instant differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id := NewID(now)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})
}

func TestNormalize(t *testing.T) {
	expected := "what is htmx?\na library for ajax."
	assert.Equal(t, expected, Normalize("  What is HTMX? \r\n", "A library for AJAX."))
}

func TestHash(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		assert.Equal(t, Hash("Test", "x"), Hash("Test", "x"))
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		assert.Equal(t, Hash("  what is go? ", "A programming language."), Hash("What Is Go?", "a programming language."))
	})

	t.Run("different cards have different hashes", func(t *testing.T) {
		assert.NotEqual(t, Hash("Card 1", ""), Hash("Card 2", ""))
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		assert.NotEqual(t, Hash("ab", "c"), Hash("a", "bc"))
	})

	t.Run("is hex sha256", func(t *testing.T) {
		assert.Len(t, Hash("q", "a"), 64)
	})
}
