package knol

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns an identifier made of a base36 millisecond timestamp followed by a
// short random suffix. Collisions are possible but negligible for a single user.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return strconv.FormatInt(now.UnixMilli(), 36) + suffix
}

// Normalize joins the card's front and back after cleaning each part.
// It trims whitespace, lowercases, and normalizes line endings.
func Normalize(front, back string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return strings.TrimSpace(p)
	}

	// A newline separator keeps "ab"+"c" and "a"+"bc" apart.
	return normalizePart(front) + "\n" + normalizePart(back)
}

// Hash returns the SHA-256 fingerprint of the normalized card content as hex.
func Hash(front, back string) string {
	hashBytes := sha256.Sum256([]byte(Normalize(front, back)))
	return fmt.Sprintf("%x", hashBytes)
}
