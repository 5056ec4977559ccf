package domain

// ResponseKind identifies the outcome family of an event response.
type ResponseKind string

const (
	ResponseGeneric           ResponseKind = "generic"
	ResponseProjectSelection  ResponseKind = "project.selection"
	ResponseChatSelection     ResponseKind = "chat.selection"
	ResponsePromptSubmission  ResponseKind = "prompt.submission"
	ResponseResponseRetrieval ResponseKind = "response.retrieval"
	ResponseImageDownload     ResponseKind = "image.download"
	ResponseFileDownload      ResponseKind = "file.download"
	ResponseTrainingMode      ResponseKind = "training.mode"
)

// EventResponse is the outcome of a dispatched event. Success distinguishes
// the succeeded variant from the failed one; Reason carries the failure text.
// CorrelationID always equals the id of the originating request.
//
// Expected domain failures (e.g. "project not found") come back as a
// response with Success=false, never as a Go error. Only infrastructure
// problems surface as errors.
type EventResponse struct {
	Kind          ResponseKind   `json:"kind"`
	CorrelationID string         `json:"correlationId"`
	Success       bool           `json:"success"`
	Reason        string         `json:"reason,omitempty"`
	Data          map[string]any `json:"data,omitempty"`

	// Training is set only on training-mode responses.
	Training *TrainingModeEnabled `json:"training,omitempty"`
}

// TrainingModeEnabled is the typed result of a training-mode request.
type TrainingModeEnabled struct {
	SessionID        string `json:"sessionId"`
	Website          string `json:"website"`
	ExistingPatterns int    `json:"existingPatterns"`
}

// Failed reports whether this is the failure variant of the response.
func (r *EventResponse) Failed() bool { return !r.Success }

// NewGenericSuccess builds the generic success placeholder echoing the
// given correlation id.
func NewGenericSuccess(correlationID string, data map[string]any) *EventResponse {
	return &EventResponse{
		Kind:          ResponseGeneric,
		CorrelationID: correlationID,
		Success:       true,
		Data:          data,
	}
}

// NewFailure builds the failed variant for the given outcome kind.
func NewFailure(kind ResponseKind, correlationID, reason string) *EventResponse {
	return &EventResponse{
		Kind:          kind,
		CorrelationID: correlationID,
		Reason:        reason,
	}
}
