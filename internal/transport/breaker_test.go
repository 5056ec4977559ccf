package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker/v2"
)

type flakyDoer struct {
	calls atomic.Int32
	err   error
}

func (d *flakyDoer) Request(_ context.Context, _, _ string, _ any) (json.RawMessage, error) {
	d.calls.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	return json.RawMessage(`{}`), nil
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &flakyDoer{}
	b := NewBreaker(inner, BreakerConfig{}, testLogger())

	raw, err := b.Request(context.Background(), "GET", "/docs/health", nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if string(raw) != `{}` {
		t.Errorf("response = %s", raw)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyDoer{err: errors.New("connection refused")}
	b := NewBreaker(inner, BreakerConfig{MaxFailures: 2}, testLogger())

	for i := 0; i < 2; i++ {
		if _, err := b.Request(context.Background(), "POST", "/api/dispatch", nil); err == nil {
			t.Fatal("expected failure")
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	before := inner.calls.Load()
	_, err := b.Request(context.Background(), "POST", "/api/dispatch", nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if inner.calls.Load() != before {
		t.Error("open circuit must fail fast without calling the transport")
	}
}
