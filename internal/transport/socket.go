package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/semantest/go.client/internal/domain"
)

// responseFrame is one correlated response pushed by the server over the
// event stream.
type responseFrame struct {
	CorrelationID string         `json:"correlationId"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// SocketWaiter resolves correlation ids from the server's WebSocket event
// stream. One connection serves all pending awaits; frames are routed to
// awaiters by correlation id, and frames nobody is waiting for are dropped.
type SocketWaiter struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]chan *domain.EventResponse
	closed  bool
}

// NewSocketWaiter dials the server's event stream and starts routing
// response frames. url is the full ws:// or wss:// endpoint.
func NewSocketWaiter(ctx context.Context, url string, logger *slog.Logger) (*SocketWaiter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial event stream: %w", err)
	}

	w := &SocketWaiter{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan *domain.EventResponse),
	}
	go w.readLoop()
	return w, nil
}

// Await blocks until a frame with the given correlation id arrives or ctx
// is done.
func (w *SocketWaiter) Await(ctx context.Context, correlationID string) (*domain.EventResponse, error) {
	ch := make(chan *domain.EventResponse, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, fmt.Errorf("event stream closed")
	}
	w.pending[correlationID] = ch
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.pending, correlationID)
		w.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("await %s: %w", correlationID, ctx.Err())
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("event stream closed")
		}
		return resp, nil
	}
}

// readLoop routes incoming frames until the connection drops, then fails
// every pending await.
func (w *SocketWaiter) readLoop() {
	for {
		var frame responseFrame
		if err := wsjson.Read(context.Background(), w.conn, &frame); err != nil {
			w.failPending()
			return
		}
		w.route(frame)
	}
}

func (w *SocketWaiter) route(frame responseFrame) {
	w.mu.Lock()
	ch, ok := w.pending[frame.CorrelationID]
	if ok {
		delete(w.pending, frame.CorrelationID)
	}
	w.mu.Unlock()

	if !ok {
		w.logger.Debug("dropping uncorrelated frame", "correlation_id", frame.CorrelationID)
		return
	}

	resp := domain.NewGenericSuccess(frame.CorrelationID, frame.Data)
	if !frame.Success {
		resp = domain.NewFailure(domain.ResponseGeneric, frame.CorrelationID, frame.Error)
	}
	ch <- resp
}

func (w *SocketWaiter) failPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for id, ch := range w.pending {
		close(ch)
		delete(w.pending, id)
	}
}

// Close shuts down the event stream connection.
func (w *SocketWaiter) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}
