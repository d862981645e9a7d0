// Package ids mints the opaque identifiers used across programs and library entries.
package ids

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator returns a fresh unique identifier on every call.
type Generator func() string

// UUID generates random v4 UUID strings.
func UUID() string {
	return uuid.NewString()
}

// Sequence returns a deterministic generator producing prefix-1, prefix-2, ...
// It is safe for concurrent use.
func Sequence(prefix string) Generator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}
