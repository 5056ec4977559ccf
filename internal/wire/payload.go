package wire

import (
	"encoding/json"
	"fmt"

	"github.com/semantest/go.client/internal/domain"
)

// PayloadFor extracts the wire payload for an event. Four kinds have
// special-cased shapes; every other kind falls back to the event's own
// fields minus the correlation id, so unknown future kinds degrade
// gracefully instead of failing.
func PayloadFor(event domain.Event) (map[string]any, error) {
	switch e := event.(type) {
	case domain.ProjectSelectionRequested:
		selector := e.Selector
		if selector == "" {
			selector = fmt.Sprintf("[data-project-name=%q]", e.ProjectName)
		}
		return map[string]any{"selector": selector}, nil

	case domain.PromptSubmissionRequested:
		return map[string]any{
			"selector": e.Selector,
			"value":    e.PromptText,
		}, nil

	case domain.GoogleImageDownloadRequested:
		// The "img" selector is a placeholder the Google Images adapter
		// refines from the element description.
		return map[string]any{
			"selector":     "img",
			"imageElement": e.ImageElement,
			"searchQuery":  e.SearchQuery,
			"filename":     e.Filename,
		}, nil

	case domain.FileDownloadRequested:
		return map[string]any{
			"url":            e.URL,
			"filename":       e.Filename,
			"conflictAction": e.ConflictAction,
			"saveAs":         e.SaveAs,
		}, nil
	}

	return genericPayload(event)
}

// genericPayload shallow-copies the event's JSON fields, dropping the
// correlation id (it travels in the message envelope, not the payload).
func genericPayload(event domain.Event) (map[string]any, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", event.Kind(), err)
	}
	payload := make(map[string]any)
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal event %s: %w", event.Kind(), err)
	}
	delete(payload, "correlationId")
	return payload, nil
}
