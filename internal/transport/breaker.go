package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker behavior.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration
}

// Breaker wraps a Doer with circuit breaker protection. When the server
// fails repeatedly, the circuit opens and calls fail fast without touching
// the network, preventing retry storms against a dead dispatch server.
type Breaker struct {
	inner   Doer
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewBreaker wraps inner with a circuit breaker. Zero-valued settings fall
// back to defaults.
func NewBreaker(inner Doer, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        "semantest-dispatch",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &Breaker{inner: inner, breaker: cb}
}

// Request implements Doer, routing the call through the circuit breaker.
func (b *Breaker) Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	resp, err := b.breaker.Execute(func() (json.RawMessage, error) {
		return b.inner.Request(ctx, method, endpoint, body)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("dispatch circuit open: %w", err)
		}
		return nil, err
	}
	return resp, nil
}

// State returns the current circuit breaker state for monitoring.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

// Compile-time interface checks.
var (
	_ Doer = (*Breaker)(nil)
	_ Doer = (*Client)(nil)
)
