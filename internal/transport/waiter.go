package transport

import (
	"context"
	"time"

	"github.com/semantest/go.client/internal/domain"
)

// Waiter resolves a dispatched correlation id into its event response.
// Implementations decide how responses actually arrive (push, polling, or
// the placeholder stubs below).
type Waiter interface {
	Await(ctx context.Context, correlationID string) (*domain.EventResponse, error)
}

// stubMessage is the data payload of the fabricated responses.
var stubMessage = map[string]any{"message": "Event processed successfully"}

// StubWaiter fabricates a generic success after a short fixed delay.
//
// This is a placeholder until the server exposes a per-correlation response
// channel; SocketWaiter is the real mechanism. The delay stands in for the
// round trip to the extension.
type StubWaiter struct {
	Delay time.Duration // defaults to 100ms
}

func (w StubWaiter) Await(ctx context.Context, correlationID string) (*domain.EventResponse, error) {
	delay := w.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if err := sleepCtx(ctx, delay); err != nil {
		return nil, err
	}
	return domain.NewGenericSuccess(correlationID, stubMessage), nil
}

// ImmediateWaiter echoes a generic success without any delay. Used by the
// blocking client variant.
type ImmediateWaiter struct{}

func (ImmediateWaiter) Await(_ context.Context, correlationID string) (*domain.EventResponse, error) {
	return domain.NewGenericSuccess(correlationID, stubMessage), nil
}
