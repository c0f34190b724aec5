package models

// Message is the read-only view of a mail message the pipeline consumes.
// The pipeline never mutates mailbox state.
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Snippet string `json:"snippet"`
	Unread  bool   `json:"unread"`
}
