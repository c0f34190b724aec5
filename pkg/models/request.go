package models

// TaskKind identifies what the model is being asked to do with the input.
type TaskKind string

const (
	// TaskReply asks the model to draft a reply to the input text.
	TaskReply TaskKind = "reply"
	// TaskSummary asks the model to summarize the input text.
	TaskSummary TaskKind = "summary"
)

// Valid reports whether k is a known task kind.
func (k TaskKind) Valid() bool {
	return k == TaskReply || k == TaskSummary
}

// Request describes one unit of work for the inference pipeline.
// It is immutable once constructed; Parameters must not be mutated
// after the Request has been handed to the pipeline.
type Request struct {
	Task       TaskKind          `json:"task"`
	InputText  string            `json:"input_text"`
	ModelID    string            `json:"model_id"`
	Parameters map[string]string `json:"parameters,omitempty"`
}
