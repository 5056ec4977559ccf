package client

import "github.com/semantest/go.client/internal/domain"

// The event and response types live in the domain package; these aliases
// expose them to SDK consumers without leaking the internal layout.
type (
	Event                        = domain.Event
	EventKind                    = domain.EventKind
	EventResponse                = domain.EventResponse
	ResponseKind                 = domain.ResponseKind
	TrainingModeEnabled          = domain.TrainingModeEnabled
	EventSendError               = domain.EventSendError
	WorkflowError                = domain.WorkflowError
	ProjectSelectionRequested    = domain.ProjectSelectionRequested
	ChatSelectionRequested       = domain.ChatSelectionRequested
	PromptSubmissionRequested    = domain.PromptSubmissionRequested
	ResponseRetrievalRequested   = domain.ResponseRetrievalRequested
	GoogleImageDownloadRequested = domain.GoogleImageDownloadRequested
	FileDownloadRequested        = domain.FileDownloadRequested
	TrainingModeRequested        = domain.TrainingModeRequested
)

// Event kind constants.
const (
	KindProjectSelectionRequested    = domain.KindProjectSelectionRequested
	KindChatSelectionRequested       = domain.KindChatSelectionRequested
	KindPromptSubmissionRequested    = domain.KindPromptSubmissionRequested
	KindResponseRetrievalRequested   = domain.KindResponseRetrievalRequested
	KindGoogleImageDownloadRequested = domain.KindGoogleImageDownloadRequested
	KindFileDownloadRequested        = domain.KindFileDownloadRequested
	KindTrainingModeRequested        = domain.KindTrainingModeRequested
)

// Response kind constants.
const (
	ResponseGeneric           = domain.ResponseGeneric
	ResponseProjectSelection  = domain.ResponseProjectSelection
	ResponseChatSelection     = domain.ResponseChatSelection
	ResponsePromptSubmission  = domain.ResponsePromptSubmission
	ResponseResponseRetrieval = domain.ResponseResponseRetrieval
	ResponseImageDownload     = domain.ResponseImageDownload
	ResponseFileDownload      = domain.ResponseFileDownload
	ResponseTrainingMode      = domain.ResponseTrainingMode
)

// ErrNoActionMapping is returned when an event kind has no wire action.
var ErrNoActionMapping = domain.ErrNoActionMapping

// NewCorrelationID generates a fresh dispatch correlation id.
func NewCorrelationID() string { return domain.NewCorrelationID() }
