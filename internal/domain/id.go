package domain

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewCorrelationID returns a unique correlation id for an outgoing event.
// The prefix makes client-generated ids easy to spot in server logs.
func NewCorrelationID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return "go-client-" + ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
