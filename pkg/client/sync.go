package client

import (
	"context"
	"time"

	"github.com/semantest/go.client/internal/transport"
)

// SyncClient is the blocking variant of Client for callers without a context
// to thread through. It resolves responses immediately instead of waiting on
// a correlation channel, keeps a persistent HTTP session from construction,
// and dispatches batches sequentially only.
type SyncClient struct {
	inner *Client
}

// NewSync creates a blocking client. Options apply as in New; a custom
// waiter passed by the caller overrides the immediate one.
func NewSync(baseURL, apiKey string, opts ...Option) *SyncClient {
	opts = append([]Option{WithWaiter(transport.ImmediateWaiter{})}, opts...)
	c := New(baseURL, apiKey, opts...)
	c.transport.EnsureSession()
	return &SyncClient{inner: c}
}

// SendEvent dispatches one event and blocks until its response resolves.
func (s *SyncClient) SendEvent(event Event, extensionID string, tabID int) (*EventResponse, error) {
	return s.inner.SendEvent(context.Background(), event, extensionID, tabID)
}

// SendEvents dispatches a batch sequentially. stopOnError=true aborts at the
// first failure; otherwise failures are logged and skipped.
func (s *SyncClient) SendEvents(sends []Send, stopOnError bool) ([]*EventResponse, error) {
	return s.inner.SendEvents(context.Background(), sends, false, stopOnError)
}

func (s *SyncClient) RequestProjectSelection(extensionID string, tabID int, projectName, selector string) (*EventResponse, error) {
	return s.inner.RequestProjectSelection(context.Background(), extensionID, tabID, projectName, selector)
}

func (s *SyncClient) RequestChatSelection(extensionID string, tabID int, chatTitle, selector string) (*EventResponse, error) {
	return s.inner.RequestChatSelection(context.Background(), extensionID, tabID, chatTitle, selector)
}

func (s *SyncClient) RequestPromptSubmission(extensionID string, tabID int, promptText, selector string) (*EventResponse, error) {
	return s.inner.RequestPromptSubmission(context.Background(), extensionID, tabID, promptText, selector)
}

func (s *SyncClient) RequestResponseRetrieval(extensionID string, tabID int, selector string, timeoutMS int) (*EventResponse, error) {
	return s.inner.RequestResponseRetrieval(context.Background(), extensionID, tabID, selector, timeoutMS)
}

func (s *SyncClient) RequestGoogleImageDownload(extensionID string, tabID int, imageElement map[string]any, searchQuery, filename string) (*EventResponse, error) {
	return s.inner.RequestGoogleImageDownload(context.Background(), extensionID, tabID, imageElement, searchQuery, filename)
}

func (s *SyncClient) RequestFileDownload(extensionID string, tabID int, url, filename, conflictAction string, saveAs bool) (*EventResponse, error) {
	return s.inner.RequestFileDownload(context.Background(), extensionID, tabID, url, filename, conflictAction, saveAs)
}

func (s *SyncClient) RequestTrainingMode(website string) (*EventResponse, error) {
	return s.inner.RequestTrainingMode(context.Background(), website)
}

func (s *SyncClient) ExecuteFullChatGPTWorkflow(extensionID string, tabID int, wf Workflow) (map[string]*EventResponse, error) {
	return s.inner.ExecuteFullChatGPTWorkflow(context.Background(), extensionID, tabID, wf)
}

// DownloadMultipleGoogleImages downloads a batch sequentially, sleeping
// delayBetween after each dispatch.
func (s *SyncClient) DownloadMultipleGoogleImages(extensionID string, tabID int, images []ImageDownload, delayBetween time.Duration) ([]*EventResponse, error) {
	return s.inner.DownloadMultipleGoogleImages(context.Background(), extensionID, tabID, images, false, delayBetween)
}

// Ping probes the server health endpoint.
func (s *SyncClient) Ping() PingResult {
	return s.inner.Ping(context.Background())
}

// Config returns a copy of the current configuration.
func (s *SyncClient) Config() Config { return s.inner.Config() }

// UpdateConfig applies recognized keys and ignores the rest.
func (s *SyncClient) UpdateConfig(updates map[string]any) { s.inner.UpdateConfig(updates) }

// Close releases the persistent session.
func (s *SyncClient) Close() error { return s.inner.Close() }
