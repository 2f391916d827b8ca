package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Store is the key/value contract the study state is persisted through.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// LoadJSON decodes the value under key into dst. When the key is absent dst is left
// untouched and false is returned, so callers pre-fill dst with their default.
func LoadJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode key %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode key %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// LoadInt reads an integer stored as a decimal string. Absent, non-numeric and
// negative values all read as 0.
func LoadInt(ctx context.Context, s Store, key string) (int, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	// Tolerate a JSON-quoted number as well as the bare form.
	n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(string(raw)), `"`))
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

// SaveInt stores n as a decimal string.
func SaveInt(ctx context.Context, s Store, key string, n int) error {
	return s.Put(ctx, key, []byte(strconv.Itoa(n)))
}
