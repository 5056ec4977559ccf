package wire

import "github.com/semantest/go.client/internal/domain"

// Target addresses an extension instance and browser tab.
type Target struct {
	ExtensionID string `json:"extensionId"`
	TabID       int    `json:"tabId"`
}

// Message is the action the extension should perform, keyed by the
// correlation id its response must echo.
type Message struct {
	Action        string         `json:"action"`
	Payload       map[string]any `json:"payload"`
	CorrelationID string         `json:"correlationId"`
}

// DispatchEnvelope is the body POSTed to the dispatch endpoint. It is built
// per call and never persisted.
type DispatchEnvelope struct {
	Target  Target  `json:"target"`
	Message Message `json:"message"`
}

// NewDispatch builds the dispatch envelope for an event. correlationID must
// be non-empty; the caller resolves or generates it before dispatch.
func NewDispatch(event domain.Event, extensionID string, tabID int, correlationID string) (*DispatchEnvelope, error) {
	action, err := ActionFor(event.Kind())
	if err != nil {
		return nil, err
	}
	payload, err := PayloadFor(event)
	if err != nil {
		return nil, err
	}
	return &DispatchEnvelope{
		Target: Target{ExtensionID: extensionID, TabID: tabID},
		Message: Message{
			Action:        action,
			Payload:       payload,
			CorrelationID: correlationID,
		},
	}, nil
}
