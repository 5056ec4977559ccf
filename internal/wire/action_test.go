package wire

import (
	"errors"
	"testing"

	"github.com/semantest/go.client/internal/domain"
)

func TestActionForAllDispatchableKinds(t *testing.T) {
	want := map[domain.EventKind]string{
		domain.KindProjectSelectionRequested:    "SELECT_PROJECT",
		domain.KindChatSelectionRequested:       "SELECT_CHAT",
		domain.KindPromptSubmissionRequested:    "FILL_PROMPT",
		domain.KindResponseRetrievalRequested:   "GET_RESPONSE",
		domain.KindGoogleImageDownloadRequested: "DOWNLOAD_IMAGE",
		domain.KindFileDownloadRequested:        "DOWNLOAD_FILE",
	}
	for kind, action := range want {
		got, err := ActionFor(kind)
		if err != nil {
			t.Fatalf("ActionFor(%s): %v", kind, err)
		}
		if got != action {
			t.Errorf("ActionFor(%s) = %q, want %q", kind, got, action)
		}
	}
}

func TestActionForTrainingModeIsUnmapped(t *testing.T) {
	// Training mode bypasses extension dispatch, so it must not have an
	// action either.
	_, err := ActionFor(domain.KindTrainingModeRequested)
	if !errors.Is(err, domain.ErrNoActionMapping) {
		t.Errorf("expected ErrNoActionMapping, got %v", err)
	}
}

func TestActionForUnknownKindFailsLoudly(t *testing.T) {
	_, err := ActionFor(domain.EventKind("made.up.kind"))
	if !errors.Is(err, domain.ErrNoActionMapping) {
		t.Errorf("expected ErrNoActionMapping, got %v", err)
	}
}
