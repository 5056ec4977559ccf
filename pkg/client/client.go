// Package client is the Semantest SDK facade. It dispatches typed browser
// automation events to a Semantest server over HTTP and resolves each one
// into a correlated response.
//
// The default Client is context-driven; SyncClient is the blocking variant
// for callers without a context to thread through.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/semantest/go.client/internal/domain"
	"github.com/semantest/go.client/internal/infra/tracer"
	"github.com/semantest/go.client/internal/transport"
	"github.com/semantest/go.client/internal/wire"
)

// Server endpoints.
const (
	dispatchEndpoint       = "/api/dispatch"
	healthEndpoint         = "/docs/health"
	trainingEnableEndpoint = "/api/training/enable"
)

// Selector and timeout defaults applied by the convenience methods.
const (
	DefaultPromptSelector    = "#prompt-textarea"
	DefaultAssistantSelector = `[data-message-author-role="assistant"]`
	DefaultResponseTimeoutMS = 30000
	DefaultConflictAction    = "uniquify"
)

// Workflow step names, used as keys in workflow results.
const (
	StepProjectSelection  = "project_selection"
	StepChatSelection     = "chat_selection"
	StepPromptSubmission  = "prompt_submission"
	StepResponseRetrieval = "response_retrieval"
)

// Client dispatches domain events to a Semantest server.
//
// Methods are safe for concurrent use. Expected automation failures (element
// not found, project missing) come back as responses with Success=false;
// Go errors mean the event never made it to the extension.
type Client struct {
	mu         sync.Mutex
	cfg        Config
	logger     *slog.Logger
	transport  *transport.Client
	doer       transport.Doer
	waiter     transport.Waiter
	journal    *transport.Journal
	limiter    *rate.Limiter
	breakerCfg *transport.BreakerConfig
}

// New creates a client for the given server.
func New(baseURL, apiKey string, opts ...Option) *Client {
	return NewWithConfig(Config{BaseURL: baseURL, APIKey: apiKey}, opts...)
}

// NewWithConfig creates a client from a full configuration, typically loaded
// from a file or the environment.
func NewWithConfig(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg.withDefaults(),
		logger: slog.Default(),
		waiter: transport.StubWaiter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = c.cfg.withDefaults()

	c.transport = transport.NewClient(c.cfg.transportConfig(), c.logger)
	if c.limiter != nil {
		c.transport.SetLimiter(c.limiter)
	}
	c.doer = c.transport
	if c.breakerCfg != nil {
		c.doer = transport.NewBreaker(c.transport, *c.breakerCfg, c.logger)
	}
	return c
}

// SendEvent dispatches one event to the extension tab and awaits its
// correlated response. A missing correlation id is generated here so the
// response can be matched to the request.
func (c *Client) SendEvent(ctx context.Context, event Event, extensionID string, tabID int) (*EventResponse, error) {
	correlationID := event.Correlation()
	if correlationID == "" {
		correlationID = domain.NewCorrelationID()
	}

	ctx, span := tracer.StartSpan(ctx, "client.send_event",
		trace.WithAttributes(
			tracer.StringAttr("event.kind", string(event.Kind())),
			tracer.StringAttr("event.correlation_id", correlationID),
		),
	)
	defer span.End()

	envelope, err := wire.NewDispatch(event, extensionID, tabID, correlationID)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, domain.NewEventSendError(event, err)
	}

	if _, err := c.doer.Request(ctx, http.MethodPost, dispatchEndpoint, envelope); err != nil {
		c.record(ctx, correlationID, envelope.Message.Action, "failure", err.Error())
		tracer.RecordError(span, err)
		return nil, domain.NewEventSendError(event, err)
	}

	resp, err := c.waiter.Await(ctx, correlationID)
	if err != nil {
		c.record(ctx, correlationID, envelope.Message.Action, "failure", err.Error())
		tracer.RecordError(span, err)
		return nil, domain.NewEventSendError(event, fmt.Errorf("await response: %w", err))
	}

	outcome := "success"
	if resp.Failed() {
		outcome = "failure"
	}
	c.record(ctx, correlationID, envelope.Message.Action, outcome, resp.Reason)

	c.logger.Debug("event dispatched",
		"kind", event.Kind(),
		"correlation_id", correlationID,
		"success", resp.Success,
	)
	tracer.SetOK(span)
	return resp, nil
}

// Send pairs an event with its dispatch target for batch sending.
type Send struct {
	Event       Event
	ExtensionID string
	TabID       int
}

// SendEvents dispatches a batch of events.
//
// With parallel=true every event is dispatched concurrently; the first
// failure fails the whole batch and no partial results are returned.
// Sequentially, stopOnError=true aborts at the first failure, while
// stopOnError=false logs each failure as a warning and returns the
// responses of the events that succeeded.
func (c *Client) SendEvents(ctx context.Context, sends []Send, parallel, stopOnError bool) ([]*EventResponse, error) {
	if parallel {
		return c.sendParallel(ctx, sends)
	}
	return c.sendSequential(ctx, sends, stopOnError)
}

func (c *Client) sendParallel(ctx context.Context, sends []Send) ([]*EventResponse, error) {
	responses := make([]*EventResponse, len(sends))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range sends {
		i, s := i, s
		g.Go(func() error {
			resp, err := c.SendEvent(ctx, s.Event, s.ExtensionID, s.TabID)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

func (c *Client) sendSequential(ctx context.Context, sends []Send, stopOnError bool) ([]*EventResponse, error) {
	responses := make([]*EventResponse, 0, len(sends))
	for _, s := range sends {
		resp, err := c.SendEvent(ctx, s.Event, s.ExtensionID, s.TabID)
		if err != nil {
			if stopOnError {
				return responses, err
			}
			c.logger.Warn("batch event failed, continuing",
				"kind", s.Event.Kind(),
				"error", err,
			)
			continue
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// RequestProjectSelection asks the extension to select a ChatGPT project.
// An empty selector is derived from the project name at dispatch time.
func (c *Client) RequestProjectSelection(ctx context.Context, extensionID string, tabID int, projectName, selector string) (*EventResponse, error) {
	resp, err := c.SendEvent(ctx, ProjectSelectionRequested{
		ProjectName: projectName,
		Selector:    selector,
	}, extensionID, tabID)
	return retag(resp, ResponseProjectSelection), err
}

// RequestChatSelection asks the extension to select a chat by title.
func (c *Client) RequestChatSelection(ctx context.Context, extensionID string, tabID int, chatTitle, selector string) (*EventResponse, error) {
	resp, err := c.SendEvent(ctx, ChatSelectionRequested{
		ChatTitle: chatTitle,
		Selector:  selector,
	}, extensionID, tabID)
	return retag(resp, ResponseChatSelection), err
}

// RequestPromptSubmission asks the extension to type and submit a prompt.
// An empty selector defaults to the ChatGPT prompt textarea.
func (c *Client) RequestPromptSubmission(ctx context.Context, extensionID string, tabID int, promptText, selector string) (*EventResponse, error) {
	if selector == "" {
		selector = DefaultPromptSelector
	}
	resp, err := c.SendEvent(ctx, PromptSubmissionRequested{
		PromptText: promptText,
		Selector:   selector,
	}, extensionID, tabID)
	return retag(resp, ResponsePromptSubmission), err
}

// RequestResponseRetrieval asks the extension to read the assistant's reply.
// An empty selector defaults to the assistant message selector; a
// non-positive timeout defaults to 30 seconds.
func (c *Client) RequestResponseRetrieval(ctx context.Context, extensionID string, tabID int, selector string, timeoutMS int) (*EventResponse, error) {
	if selector == "" {
		selector = DefaultAssistantSelector
	}
	if timeoutMS <= 0 {
		timeoutMS = DefaultResponseTimeoutMS
	}
	resp, err := c.SendEvent(ctx, ResponseRetrievalRequested{
		Selector:  selector,
		TimeoutMS: timeoutMS,
	}, extensionID, tabID)
	return retag(resp, ResponseResponseRetrieval), err
}

// RequestGoogleImageDownload asks the extension to download an image from a
// Google Images result.
func (c *Client) RequestGoogleImageDownload(ctx context.Context, extensionID string, tabID int, imageElement map[string]any, searchQuery, filename string) (*EventResponse, error) {
	resp, err := c.SendEvent(ctx, GoogleImageDownloadRequested{
		ImageElement: imageElement,
		SearchQuery:  searchQuery,
		Filename:     filename,
	}, extensionID, tabID)
	return retag(resp, ResponseImageDownload), err
}

// RequestFileDownload asks the browser to download a URL. An empty conflict
// action defaults to "uniquify".
func (c *Client) RequestFileDownload(ctx context.Context, extensionID string, tabID int, url, filename, conflictAction string, saveAs bool) (*EventResponse, error) {
	if conflictAction == "" {
		conflictAction = DefaultConflictAction
	}
	resp, err := c.SendEvent(ctx, FileDownloadRequested{
		URL:            url,
		Filename:       filename,
		ConflictAction: conflictAction,
		SaveAs:         saveAs,
	}, extensionID, tabID)
	return retag(resp, ResponseFileDownload), err
}

// RequestTrainingMode enables server-side training mode for a website. This
// bypasses extension dispatch and calls the training endpoint directly.
func (c *Client) RequestTrainingMode(ctx context.Context, website string) (*EventResponse, error) {
	event := TrainingModeRequested{
		Website:       website,
		CorrelationID: domain.NewCorrelationID(),
	}

	ctx, span := tracer.StartSpan(ctx, "client.request_training_mode",
		trace.WithAttributes(tracer.StringAttr("training.website", website)),
	)
	defer span.End()

	raw, err := c.doer.Request(ctx, http.MethodPost, trainingEnableEndpoint, map[string]string{
		"website": website,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, domain.NewEventSendError(event, err)
	}

	var parsed struct {
		SessionID        string `json:"sessionId"`
		Website          string `json:"website"`
		ExistingPatterns int    `json:"existingPatterns"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			tracer.RecordError(span, err)
			return nil, domain.NewEventSendError(event, fmt.Errorf("decode training response: %w", err))
		}
	}
	if parsed.SessionID == "" {
		parsed.SessionID = "unknown"
	}

	tracer.SetOK(span)
	return &EventResponse{
		Kind:          ResponseTrainingMode,
		CorrelationID: event.CorrelationID,
		Success:       true,
		Training: &TrainingModeEnabled{
			SessionID:        parsed.SessionID,
			Website:          parsed.Website,
			ExistingPatterns: parsed.ExistingPatterns,
		},
	}, nil
}

// Workflow describes a full ChatGPT interaction. ChatTitle is optional; when
// empty the chat selection step is skipped.
type Workflow struct {
	ProjectName string
	ChatTitle   string
	PromptText  string
}

// ExecuteFullChatGPTWorkflow runs project selection, optional chat
// selection, prompt submission and response retrieval in order. It stops at
// the first step whose response is the failure variant and returns a
// *WorkflowError carrying every step result accumulated so far, the failed
// one included.
func (c *Client) ExecuteFullChatGPTWorkflow(ctx context.Context, extensionID string, tabID int, wf Workflow) (map[string]*EventResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "client.chatgpt_workflow",
		trace.WithAttributes(tracer.StringAttr("workflow.project", wf.ProjectName)),
	)
	defer span.End()

	results := make(map[string]*EventResponse)

	step := func(name string, run func() (*EventResponse, error)) error {
		resp, err := run()
		if err != nil {
			tracer.RecordError(span, err)
			return err
		}
		results[name] = resp
		if resp.Failed() {
			werr := &WorkflowError{Step: name, Partial: results}
			tracer.RecordError(span, werr)
			return werr
		}
		return nil
	}

	if err := step(StepProjectSelection, func() (*EventResponse, error) {
		return c.RequestProjectSelection(ctx, extensionID, tabID, wf.ProjectName, "")
	}); err != nil {
		return nil, err
	}

	if wf.ChatTitle != "" {
		if err := step(StepChatSelection, func() (*EventResponse, error) {
			return c.RequestChatSelection(ctx, extensionID, tabID, wf.ChatTitle, "")
		}); err != nil {
			return nil, err
		}
	}

	if err := step(StepPromptSubmission, func() (*EventResponse, error) {
		return c.RequestPromptSubmission(ctx, extensionID, tabID, wf.PromptText, "")
	}); err != nil {
		return nil, err
	}

	if err := step(StepResponseRetrieval, func() (*EventResponse, error) {
		return c.RequestResponseRetrieval(ctx, extensionID, tabID, "", 0)
	}); err != nil {
		return nil, err
	}

	tracer.SetOK(span)
	return results, nil
}

// ImageDownload describes one Google Images download in a batch.
type ImageDownload struct {
	Element     map[string]any
	SearchQuery string
	Filename    string
}

// DownloadMultipleGoogleImages downloads a batch of Google Images results.
// Images without a filename are named image_1, image_2, ... by position.
// Sequential downloads sleep delayBetween after each dispatch; parallel ones
// go through SendEvents fail-fast semantics.
func (c *Client) DownloadMultipleGoogleImages(ctx context.Context, extensionID string, tabID int, images []ImageDownload, parallel bool, delayBetween time.Duration) ([]*EventResponse, error) {
	sends := make([]Send, len(images))
	for i, img := range images {
		filename := img.Filename
		if filename == "" {
			filename = fmt.Sprintf("image_%d", i+1)
		}
		sends[i] = Send{
			Event: GoogleImageDownloadRequested{
				ImageElement: img.Element,
				SearchQuery:  img.SearchQuery,
				Filename:     filename,
			},
			ExtensionID: extensionID,
			TabID:       tabID,
		}
	}

	if parallel {
		return c.sendParallel(ctx, sends)
	}

	responses := make([]*EventResponse, 0, len(sends))
	for _, s := range sends {
		resp, err := c.SendEvent(ctx, s.Event, s.ExtensionID, s.TabID)
		if err != nil {
			return responses, err
		}
		responses = append(responses, resp)
		if delayBetween > 0 {
			timer := time.NewTimer(delayBetween)
			select {
			case <-ctx.Done():
				timer.Stop()
				return responses, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return responses, nil
}

// PingResult is the outcome of a server health probe.
type PingResult struct {
	Success bool          `json:"success"`
	Latency time.Duration `json:"latency"`
}

// Ping probes the server health endpoint. It never returns an error; an
// unreachable server is reported as Success=false with the observed latency.
func (c *Client) Ping(ctx context.Context) PingResult {
	start := time.Now()
	_, err := c.doer.Request(ctx, http.MethodGet, healthEndpoint, nil)
	latency := time.Since(start)
	if err != nil {
		c.logger.Debug("ping failed", "error", err, "latency", latency)
		return PingResult{Success: false, Latency: latency}
	}
	return PingResult{Success: true, Latency: latency}
}

// Config returns a copy of the current configuration.
func (c *Client) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// UpdateConfig applies the recognized keys from updates to the configuration
// and propagates the result to the transport. Unknown keys are silently
// ignored.
func (c *Client) UpdateConfig(updates map[string]any) {
	c.mu.Lock()
	c.cfg.Update(updates)
	c.cfg = c.cfg.withDefaults()
	cfg := c.cfg
	c.mu.Unlock()
	c.transport.UpdateConfig(cfg.transportConfig())
}

// Close releases the transport session and the waiter when it holds a
// connection. The client remains usable; a later request reconnects.
func (c *Client) Close() error {
	var firstErr error
	if closer, ok := c.waiter.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.transport.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// record writes a journal entry when journaling is enabled.
func (c *Client) record(ctx context.Context, correlationID, action, outcome, detail string) {
	if c.journal == nil {
		return
	}
	err := c.journal.Record(ctx, transport.JournalEntry{
		CorrelationID: correlationID,
		Action:        action,
		Endpoint:      dispatchEndpoint,
		Outcome:       outcome,
		Detail:        detail,
	})
	if err != nil {
		c.logger.Warn("journal write failed", "error", err)
	}
}

// retag narrows a generic response to the convenience method's outcome kind.
func retag(resp *EventResponse, kind ResponseKind) *EventResponse {
	if resp != nil && resp.Kind == ResponseGeneric {
		resp.Kind = kind
	}
	return resp
}
