package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// streamServer upgrades each connection and feeds it the given frames.
func streamServer(t *testing.T, frames []responseFrame, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		for _, frame := range frames {
			time.Sleep(delay)
			if err := wsjson.Write(r.Context(), conn, frame); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		conn.Reader(r.Context())
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSocketWaiterResolvesByCorrelationID(t *testing.T) {
	srv := streamServer(t, []responseFrame{
		{CorrelationID: "other", Success: true},
		{CorrelationID: "c-1", Success: true, Data: map[string]any{"message": "done"}},
	}, 10*time.Millisecond)
	defer srv.Close()

	w, err := NewSocketWaiter(context.Background(), wsURL(srv), testLogger())
	if err != nil {
		t.Fatalf("NewSocketWaiter: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := w.Await(ctx, "c-1")
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if resp.CorrelationID != "c-1" {
		t.Errorf("correlation id = %q", resp.CorrelationID)
	}
	if resp.Failed() {
		t.Error("expected success variant")
	}
}

func TestSocketWaiterFailureFrame(t *testing.T) {
	srv := streamServer(t, []responseFrame{
		{CorrelationID: "c-2", Success: false, Error: "element not found"},
	}, 10*time.Millisecond)
	defer srv.Close()

	w, err := NewSocketWaiter(context.Background(), wsURL(srv), testLogger())
	if err != nil {
		t.Fatalf("NewSocketWaiter: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := w.Await(ctx, "c-2")
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if !resp.Failed() {
		t.Error("expected failure variant")
	}
	if resp.Reason != "element not found" {
		t.Errorf("reason = %q", resp.Reason)
	}
}

func TestSocketWaiterDeadline(t *testing.T) {
	srv := streamServer(t, nil, 0)
	defer srv.Close()

	w, err := NewSocketWaiter(context.Background(), wsURL(srv), testLogger())
	if err != nil {
		t.Fatalf("NewSocketWaiter: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := w.Await(ctx, "never"); err == nil {
		t.Fatal("expected deadline error")
	}
}

func TestSocketWaiterDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := NewSocketWaiter(ctx, "ws://127.0.0.1:1/ws", testLogger()); err == nil {
		t.Fatal("expected dial error")
	}
}
