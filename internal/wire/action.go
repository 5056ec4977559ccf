// Package wire converts domain events into the envelope the Semantest
// server dispatches to the browser extension. The mapping and extraction
// functions are pure and shared by both client variants.
package wire

import (
	"fmt"

	"github.com/semantest/go.client/internal/domain"
)

// actionByKind is the total mapping from dispatchable event kinds to wire
// action identifiers. Training-mode requests are absent on purpose: they go
// to the training endpoint instead of extension dispatch.
var actionByKind = map[domain.EventKind]string{
	domain.KindProjectSelectionRequested:    "SELECT_PROJECT",
	domain.KindChatSelectionRequested:       "SELECT_CHAT",
	domain.KindPromptSubmissionRequested:    "FILL_PROMPT",
	domain.KindResponseRetrievalRequested:   "GET_RESPONSE",
	domain.KindGoogleImageDownloadRequested: "DOWNLOAD_IMAGE",
	domain.KindFileDownloadRequested:        "DOWNLOAD_FILE",
}

// ActionFor returns the wire action for an event kind. An unmapped kind is
// a contract error, never a default action.
func ActionFor(kind domain.EventKind) (string, error) {
	action, ok := actionByKind[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNoActionMapping, kind)
	}
	return action, nil
}
