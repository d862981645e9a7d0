// Package kvstore persists whole-collection JSON blobs under string keys.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys used by the library, the max-weight registry and the workspace.
const (
	KeyWorkoutLibrary = "workout-library"
	KeyWeekLibrary    = "week-library"
	KeyProgramLibrary = "program-library"
	KeyMaxWeights     = "user-max-weights"
	KeyActiveProgram  = "active-program"
)

// Store is a key/value persistence surface. Get returns nil, nil for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// GetJSON decodes the value under key into a T. A missing key yields the zero
// value and found=false.
func GetJSON[T any](ctx context.Context, s Store, key string) (v T, found bool, err error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return v, false, fmt.Errorf("reading %s: %w", key, err)
	}
	if data == nil {
		return v, false, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v and writes it under key, replacing the previous value.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
