// Package domain defines the event and response types exchanged with the
// Semantest server. Events are immutable value types; each carries a kind
// discriminant and an optional correlation id linking it to its eventual
// response.
package domain

// EventKind identifies the kind of domain event being dispatched.
type EventKind string

const (
	KindProjectSelectionRequested    EventKind = "project.selection.requested"
	KindChatSelectionRequested       EventKind = "chat.selection.requested"
	KindPromptSubmissionRequested    EventKind = "prompt.submission.requested"
	KindResponseRetrievalRequested   EventKind = "response.retrieval.requested"
	KindGoogleImageDownloadRequested EventKind = "image.download.requested"
	KindFileDownloadRequested        EventKind = "file.download.requested"
	KindTrainingModeRequested        EventKind = "training.mode.requested"
)

// Event is a typed request describing an intended automation action.
// Implementations are value types; a zero CorrelationID means the client
// generates one at dispatch time.
type Event interface {
	Kind() EventKind
	Correlation() string
}

// ProjectSelectionRequested asks the extension to select a ChatGPT project.
// When Selector is empty the wire payload derives one from ProjectName.
type ProjectSelectionRequested struct {
	ProjectName   string `json:"projectName"`
	Selector      string `json:"selector"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (e ProjectSelectionRequested) Kind() EventKind     { return KindProjectSelectionRequested }
func (e ProjectSelectionRequested) Correlation() string { return e.CorrelationID }

// ChatSelectionRequested asks the extension to select a chat by title.
type ChatSelectionRequested struct {
	ChatTitle     string `json:"chatTitle"`
	Selector      string `json:"selector"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (e ChatSelectionRequested) Kind() EventKind     { return KindChatSelectionRequested }
func (e ChatSelectionRequested) Correlation() string { return e.CorrelationID }

// PromptSubmissionRequested asks the extension to type and submit a prompt.
type PromptSubmissionRequested struct {
	PromptText    string `json:"promptText"`
	Selector      string `json:"selector"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (e PromptSubmissionRequested) Kind() EventKind     { return KindPromptSubmissionRequested }
func (e PromptSubmissionRequested) Correlation() string { return e.CorrelationID }

// ResponseRetrievalRequested asks the extension to read the assistant's
// response. TimeoutMS bounds how long the extension waits for content.
type ResponseRetrievalRequested struct {
	Selector      string `json:"selector"`
	TimeoutMS     int    `json:"timeout"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (e ResponseRetrievalRequested) Kind() EventKind     { return KindResponseRetrievalRequested }
func (e ResponseRetrievalRequested) Correlation() string { return e.CorrelationID }

// GoogleImageDownloadRequested asks the extension to download an image from
// Google Images. ImageElement describes the DOM element as captured by the
// caller; the extension refines the placeholder selector.
type GoogleImageDownloadRequested struct {
	ImageElement  map[string]any `json:"imageElement"`
	SearchQuery   string         `json:"searchQuery"`
	Filename      string         `json:"filename"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

func (e GoogleImageDownloadRequested) Kind() EventKind     { return KindGoogleImageDownloadRequested }
func (e GoogleImageDownloadRequested) Correlation() string { return e.CorrelationID }

// FileDownloadRequested asks the browser to download a URL.
type FileDownloadRequested struct {
	URL            string `json:"url"`
	Filename       string `json:"filename"`
	ConflictAction string `json:"conflictAction"`
	SaveAs         bool   `json:"saveAs"`
	CorrelationID  string `json:"correlationId,omitempty"`
}

func (e FileDownloadRequested) Kind() EventKind     { return KindFileDownloadRequested }
func (e FileDownloadRequested) Correlation() string { return e.CorrelationID }

// TrainingModeRequested asks the server to enable training mode for a
// website. Unlike the other kinds it bypasses extension dispatch and goes
// straight to the training endpoint.
type TrainingModeRequested struct {
	Website       string `json:"website"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (e TrainingModeRequested) Kind() EventKind     { return KindTrainingModeRequested }
func (e TrainingModeRequested) Correlation() string { return e.CorrelationID }
