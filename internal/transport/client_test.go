package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noSleep replaces backoff sleeps and records the requested durations.
func noSleep(record *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*record = append(*record, d)
		return nil
	}
}

func TestRequestSuccessSetsHeaders(t *testing.T) {
	var gotAuth, gotUA, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"}, testLogger())
	raw, err := c.Request(context.Background(), http.MethodPost, "/api/dispatch", map[string]any{"hello": "world"})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	var resp map[string]bool
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp["ok"] {
		t.Errorf("response = %v", resp)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want default", gotUA)
	}
	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q", gotCT)
	}
}

func TestRequestTrimsBaseURLSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "k"}, testLogger())
	if _, err := c.Request(context.Background(), http.MethodGet, "/docs/health", nil); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if gotPath != "/docs/health" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestRequestStatusErrorUsesJSONDetail(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"tab not found"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, testLogger())
	_, err := c.Request(context.Background(), http.MethodPost, "/api/dispatch", nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusNotFound {
		t.Errorf("status = %d", statusErr.Status)
	}
	if statusErr.Detail != "tab not found" {
		t.Errorf("detail = %q", statusErr.Detail)
	}
	// HTTP >= 400 must fail immediately, never retry.
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestRequestStatusErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, testLogger())
	_, err := c.Request(context.Background(), http.MethodGet, "/docs/health", nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Detail != "Internal Server Error" {
		t.Errorf("detail = %q", statusErr.Detail)
	}
}

func TestRequestRetriesWithExponentialBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	var sleeps []time.Duration
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Retries: 3}, testLogger())
	c.sleep = noSleep(&sleeps)

	_, err := c.Request(context.Background(), http.MethodPost, "/api/dispatch", nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	// 3 attempts means 2 backoff sleeps: 2^0 and 2^1 seconds.
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", sleeps, want)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, sleeps[i], want[i])
		}
	}
}

func TestRequestSucceedsAfterTransientFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			// Drop the first connection to force a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("hijacking unsupported")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack: %v", err)
			}
			conn.Close()
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var sleeps []time.Duration
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Retries: 3}, testLogger())
	c.sleep = noSleep(&sleeps)

	raw, err := c.Request(context.Background(), http.MethodGet, "/docs/health", nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("response = %s", raw)
	}
	if len(sleeps) != 1 {
		t.Errorf("sleeps = %v, want a single backoff before the successful attempt", sleeps)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
}

func TestCloseThenRequestRecreatesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, testLogger())
	if _, err := c.Request(context.Background(), http.MethodGet, "/docs/health", nil); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.Request(context.Background(), http.MethodGet, "/docs/health", nil); err != nil {
		t.Fatalf("request after close: %v", err)
	}
}

func TestUpdateConfigTakesEffect(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, testLogger())
	c.UpdateConfig(Config{BaseURL: srv.URL, APIKey: "k", UserAgent: "CustomAgent/2.0"})

	if _, err := c.Request(context.Background(), http.MethodGet, "/docs/health", nil); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if gotUA != "CustomAgent/2.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:3000/"}.withDefaults()
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.Retries != DefaultRetries {
		t.Errorf("retries = %d", cfg.Retries)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("user agent = %q", cfg.UserAgent)
	}
	if cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
}
