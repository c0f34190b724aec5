package digest

import (
	"fmt"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// SummaryPrompt builds the per-message summarization prompt.
func SummaryPrompt(msg models.Message) string {
	return fmt.Sprintf(
		"Summarize this email clearly in 1 sentence, then extract 3 keywords:\nFrom: %s\nSubject: %s\n\n%s",
		msg.From, msg.Subject, msg.Snippet)
}

// ReplyPrompt builds a prompt asking for a short reply to the given
// message text.
func ReplyPrompt(text string) string {
	return fmt.Sprintf(
		"Write a brief, polite reply to this email. Reply with the message body only:\n\n%s",
		text)
}
