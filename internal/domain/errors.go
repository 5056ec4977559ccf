package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	// ErrNoActionMapping means an event kind has no wire action. This is a
	// contract error: adding a kind without updating the mapping must fail
	// loudly instead of dispatching an empty action.
	ErrNoActionMapping = errors.New("no action mapping for event kind")
)

// EventSendError wraps a transport or dispatch failure. It carries the
// originating event when known and the underlying cause.
type EventSendError struct {
	Event Event // may be nil when the failure precedes event construction
	Err   error
}

func (e *EventSendError) Error() string {
	if e.Event != nil {
		return fmt.Sprintf("send event %s: %v", e.Event.Kind(), e.Err)
	}
	return fmt.Sprintf("send event: %v", e.Err)
}

func (e *EventSendError) Unwrap() error { return e.Err }

// NewEventSendError wraps err with the event that was being sent.
func NewEventSendError(event Event, err error) *EventSendError {
	return &EventSendError{Event: event, Err: err}
}

// WorkflowError means a workflow step returned its failure variant. Partial
// holds every step result accumulated so far, including the failed one.
type WorkflowError struct {
	Step    string
	Partial map[string]*EventResponse
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("workflow step %s failed", e.Step)
}
