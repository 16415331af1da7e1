// Package ids generates the identifiers and timestamps used across
// the brokering state engine: non-zero random run/node ids, task
// UUIDs, and the monotonic wall clock used for pushed_at/online_until
// comparisons.
package ids

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRunOrNodeID draws a non-zero random int64, retrying on the
// astronomically unlikely event of a zero draw. Run and node ids
// share this generator; callers retry independently on primary-key
// collision against the Store (spec.md §4.2/§4.3).
func NewRunOrNodeID() (int64, error) {
	for {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("reading random bytes: %w", err)
		}
		id := int64(binary.BigEndian.Uint64(buf[:]))
		if id != 0 {
			return id, nil
		}
	}
}

// NewTaskID returns a fresh UUIDv4 in the wire "simple" form: 32
// lowercase hex characters, no dashes (spec.md §6).
func NewTaskID() string {
	return ToSimple(uuid.New())
}

// ToSimple renders a uuid.UUID in the dashless wire form.
func ToSimple(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

// ParseSimple parses the dashless wire form back into a uuid.UUID,
// rejecting anything that isn't a valid UUID once dashes are
// reinserted is unnecessary: uuid.Parse accepts the 32-hex form
// directly.
func ParseSimple(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// Clock abstracts wall-clock reads so tests can control "now" without
// sleeping. The Driver and Fleet handlers read "now" from a Clock and
// pass it to Store methods as a time.Time argument.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a Clock pinned to a single instant, used by tests
// that need deterministic "now" comparisons (spec.md §8 boundary
// behaviours).
type FixedClock struct {
	At time.Time
}

// Now returns the pinned instant.
func (f FixedClock) Now() time.Time { return f.At }
