// Package mailbox provides the read-only message source the pipeline
// consumes. Implementations never mutate mail state.
package mailbox

import (
	"context"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Source lists messages for the pipeline. Implementations are read-only
// views over a mail store.
type Source interface {
	// ListUnread returns up to max unread messages with their metadata
	// and snippet text.
	ListUnread(ctx context.Context, max int64) ([]models.Message, error)
}
