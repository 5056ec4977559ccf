// Package transport performs the authenticated HTTP calls behind the SDK:
// JSON requests with bounded retry and exponential backoff, plus the
// correlation waiters that resolve dispatched events into responses.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/semantest/go.client/internal/infra/tracer"
)

// Defaults for the client configuration surface.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
	DefaultUserAgent = "SemantestGoSDK/1.0.0"
)

// maxResponseBody is the maximum response body size we read from the server.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// Config holds the transport settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration // per-attempt timeout
	Retries   int           // total attempts for transient failures
	UserAgent string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retries <= 0 {
		c.Retries = DefaultRetries
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// StatusError is an HTTP >= 400 response. These fail immediately and are
// never retried; Detail carries the server's JSON "error" field when
// present, else the status text.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
}

// Doer issues a JSON request against the configured server. Implemented by
// *Client and by the circuit-breaker wrapper.
type Doer interface {
	Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error)
}

// Client is the HTTP transport. The underlying session is created lazily on
// first use and released by Close; a call after Close recreates it.
type Client struct {
	mu      sync.Mutex
	cfg     Config
	http    *http.Client
	logger  *slog.Logger
	limiter *rate.Limiter

	// sleep is the backoff sleep, replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a transport for the given configuration.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg.withDefaults(),
		logger: logger,
		sleep:  sleepCtx,
	}
}

// SetLimiter installs a client-side dispatch throttle. A nil limiter
// disables throttling.
func (c *Client) SetLimiter(l *rate.Limiter) {
	c.mu.Lock()
	c.limiter = l
	c.mu.Unlock()
}

// Config returns a copy of the current transport configuration.
func (c *Client) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// UpdateConfig replaces the transport configuration. The session is
// recreated on the next request so new timeouts take effect.
func (c *Client) UpdateConfig(cfg Config) {
	c.mu.Lock()
	c.cfg = cfg.withDefaults()
	if c.http != nil {
		c.http.CloseIdleConnections()
		c.http = nil
	}
	c.mu.Unlock()
}

// Request performs a JSON request with bounded retry. Transient transport
// failures (timeouts, connection errors) are retried up to the configured
// attempt count, sleeping 2^attempt seconds between attempts. HTTP >= 400
// responses and context cancellation fail immediately.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	ctx, span := tracer.StartSpan(ctx, "transport.request",
		trace.WithAttributes(
			tracer.StringAttr("http.method", method),
			tracer.StringAttr("http.endpoint", endpoint),
		),
	)
	defer span.End()

	c.mu.Lock()
	cfg := c.cfg
	limiter := c.limiter
	c.mu.Unlock()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			tracer.RecordError(span, err)
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			tracer.RecordError(span, err)
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = raw
	}

	url := cfg.BaseURL + endpoint

	var lastErr error
	for attempt := 0; attempt < cfg.Retries; attempt++ {
		respBody, err := c.do(ctx, method, url, payload, cfg)
		if err == nil {
			tracer.SetOK(span)
			return respBody, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) || ctx.Err() != nil {
			tracer.RecordError(span, err)
			return nil, err
		}

		lastErr = err
		if attempt == cfg.Retries-1 {
			break
		}

		backoff := time.Duration(1<<attempt) * time.Second
		c.logger.Debug("transport retrying",
			"method", method,
			"endpoint", endpoint,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if err := c.sleep(ctx, backoff); err != nil {
			tracer.RecordError(span, err)
			return nil, err
		}
	}

	tracer.RecordError(span, lastErr)
	return nil, lastErr
}

// do performs a single HTTP attempt.
func (c *Client) do(ctx context.Context, method, url string, payload []byte, cfg Config) (json.RawMessage, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	httpReq.Header.Set("User-Agent", cfg.UserAgent)

	start := time.Now()
	httpResp, err := c.session().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, &StatusError{
			Status: httpResp.StatusCode,
			Detail: errorDetail(httpResp.StatusCode, respBody),
		}
	}

	c.logger.Debug("transport request completed",
		"method", method,
		"status", httpResp.StatusCode,
		"duration", time.Since(start),
	)
	return respBody, nil
}

// session returns the lazily-created HTTP client, recreating it after Close.
func (c *Client) session() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http == nil {
		c.http = newHTTPClient(c.cfg.Timeout)
	}
	return c.http
}

// EnsureSession eagerly creates the HTTP session. The blocking client
// variant uses this to set up its persistent session at construction.
func (c *Client) EnsureSession() {
	c.session()
}

// Close releases the HTTP session. A later request lazily recreates it.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http != nil {
		c.http.CloseIdleConnections()
		c.http = nil
	}
	return nil
}

// errorDetail extracts the server's JSON "error" field, falling back to the
// HTTP status text.
func errorDetail(status int, body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return http.StatusText(status)
}

// newHTTPClient builds a pooled HTTP client with the per-attempt timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     120 * time.Second,
			ForceAttemptHTTP2:   true,
		},
		Timeout: timeout,
	}
}

// sleepCtx sleeps for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
