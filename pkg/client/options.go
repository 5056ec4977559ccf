package client

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/semantest/go.client/internal/transport"
)

// Option customizes a Client at construction time.
type Option func(*Client)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout sets the per-attempt request timeout. Sub-second durations
// round up to one second.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		seconds := int(d / time.Second)
		if d > 0 && seconds == 0 {
			seconds = 1
		}
		c.cfg.Timeout = seconds
	}
}

// WithRetries sets the total attempt count for transient failures.
func WithRetries(n int) Option {
	return func(c *Client) { c.cfg.Retries = n }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.cfg.UserAgent = ua }
}

// WithWaiter installs the correlation waiter used to resolve dispatched
// events into responses. Defaults to the stub waiter. The client takes
// ownership: a waiter implementing Close() error is closed by Client.Close.
func WithWaiter(w transport.Waiter) Option {
	return func(c *Client) {
		if w != nil {
			c.waiter = w
		}
	}
}

// WithCircuitBreaker wraps dispatch calls with a circuit breaker so a dead
// server fails fast instead of feeding retry storms.
func WithCircuitBreaker(cfg transport.BreakerConfig) Option {
	return func(c *Client) { c.breakerCfg = &cfg }
}

// WithRateLimit throttles outgoing dispatches to rps requests per second
// with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithJournal records every dispatch outcome in the given journal. The
// caller owns the journal and closes it.
func WithJournal(j *transport.Journal) Option {
	return func(c *Client) { c.journal = j }
}
