package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestEventSendErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewEventSendError(ProjectSelectionRequested{ProjectName: "acme"}, cause)

	if !strings.Contains(err.Error(), string(KindProjectSelectionRequested)) {
		t.Errorf("error should name the event kind, got %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to reach the cause")
	}
}

func TestEventSendErrorNilEvent(t *testing.T) {
	err := NewEventSendError(nil, errors.New("boom"))
	if err.Error() == "" {
		t.Error("error message should not be empty")
	}
}

func TestWorkflowErrorCarriesPartialResults(t *testing.T) {
	partial := map[string]*EventResponse{
		"project_selection": NewFailure(ResponseProjectSelection, "c-1", "not found"),
	}
	err := &WorkflowError{Step: "project_selection", Partial: partial}

	if !strings.Contains(err.Error(), "project_selection") {
		t.Errorf("error should name the step, got %q", err.Error())
	}
	if len(err.Partial) != 1 {
		t.Fatalf("partial results len = %d, want 1", len(err.Partial))
	}
	if err.Partial["project_selection"].Success {
		t.Error("partial result should be the failed variant")
	}
}

func TestNewFailureIsFailedVariant(t *testing.T) {
	resp := NewFailure(ResponseChatSelection, "c-2", "no such chat")
	if !resp.Failed() {
		t.Error("Failed() = false on failure variant")
	}
	if resp.CorrelationID != "c-2" {
		t.Errorf("correlation id = %q", resp.CorrelationID)
	}
	if resp.Reason != "no such chat" {
		t.Errorf("reason = %q", resp.Reason)
	}
}

func TestNewGenericSuccessEchoesCorrelation(t *testing.T) {
	resp := NewGenericSuccess("c-3", map[string]any{"message": "ok"})
	if resp.Failed() {
		t.Error("generic success should not be the failed variant")
	}
	if resp.CorrelationID != "c-3" {
		t.Errorf("correlation id = %q", resp.CorrelationID)
	}
	if resp.Kind != ResponseGeneric {
		t.Errorf("kind = %q", resp.Kind)
	}
}
