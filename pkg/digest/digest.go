// Package digest turns unread mail into gated one-line summaries by
// running each message through the inference pipeline.
package digest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mailmind-ai/mailmind/pkg/agent"
	"github.com/mailmind-ai/mailmind/pkg/mailbox"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

const defaultConcurrency = 4

// Summary is one summarized message with its gate verdict.
type Summary struct {
	MessageID  string  `json:"message_id"`
	Subject    string  `json:"subject"`
	From       string  `json:"from"`
	Text       string  `json:"text"`
	Accepted   bool    `json:"accepted"`
	Confidence float64 `json:"confidence"`
}

// Summarizer runs the summary task over unread mail.
type Summarizer struct {
	source      mailbox.Source
	pipeline    *agent.Agent
	modelID     string
	threshold   float64
	maxMessages int64
	concurrency int
	logger      *zap.Logger
}

// New creates a Summarizer. maxMessages bounds how many unread messages
// are pulled per run.
func New(source mailbox.Source, pipeline *agent.Agent, modelID string, threshold float64, maxMessages int64, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxMessages <= 0 {
		maxMessages = 10
	}
	return &Summarizer{
		source:      source,
		pipeline:    pipeline,
		modelID:     modelID,
		threshold:   threshold,
		maxMessages: maxMessages,
		concurrency: defaultConcurrency,
		logger:      logger,
	}
}

// Run lists unread messages and summarizes each through the pipeline,
// a bounded number at a time. Results keep mailbox order. A message
// whose inference fails outright fails the run; low-confidence
// summaries come back annotated, not dropped.
func (s *Summarizer) Run(ctx context.Context) ([]Summary, error) {
	messages, err := s.source.ListUnread(ctx, s.maxMessages)
	if err != nil {
		return nil, fmt.Errorf("list unread mail: %w", err)
	}
	if len(messages) == 0 {
		return nil, nil
	}

	summaries := make([]Summary, len(messages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, msg := range messages {
		i, msg := i, msg
		g.Go(func() error {
			req := models.Request{
				Task:      models.TaskSummary,
				InputText: SummaryPrompt(msg),
				ModelID:   s.modelID,
			}
			resp, err := s.pipeline.Handle(ctx, req, s.threshold)
			if err != nil {
				return fmt.Errorf("summarize message %s: %w", msg.ID, err)
			}
			summaries[i] = Summary{
				MessageID:  msg.ID,
				Subject:    msg.Subject,
				From:       msg.From,
				Text:       resp.Text,
				Accepted:   resp.Accepted,
				Confidence: resp.Confidence,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("summarized unread mail", zap.Int("messages", len(summaries)))
	return summaries, nil
}
