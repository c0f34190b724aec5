// Package agent composes fingerprinting, caching, inference and gating
// into the one operation callers see: a gated, logged, possibly-cached
// answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailmind-ai/mailmind/pkg/cache"
	"github.com/mailmind-ai/mailmind/pkg/fingerprint"
	"github.com/mailmind-ai/mailmind/pkg/gate"
	"github.com/mailmind-ai/mailmind/pkg/gateway"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Recorder receives one interaction record per pipeline call. Satisfied
// by *audit.Logger.
type Recorder interface {
	Append(models.LogRecord) error
}

const previewLen = 120

// Agent runs the confidence-gated inference pipeline. All collaborators
// are injected at construction; the Agent holds no global state.
type Agent struct {
	gw        gateway.Gateway
	store     cache.Store
	recorder  Recorder
	logger    *zap.Logger
	ttl       time.Duration
	retryWait time.Duration
}

// Option configures an Agent.
type Option func(*Agent)

// WithRetry enables one bounded retry after an unavailable runtime,
// waiting wait before the second attempt.
func WithRetry(wait time.Duration) Option {
	return func(a *Agent) { a.retryWait = wait }
}

// New creates an Agent. ttl bounds how long successful results stay
// cached.
func New(gw gateway.Gateway, store cache.Store, recorder Recorder, ttl time.Duration, logger *zap.Logger, opts ...Option) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Agent{
		gw:       gw,
		store:    store,
		recorder: recorder,
		logger:   logger,
		ttl:      ttl,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle produces a gated answer for req: cache lookup, inference on
// miss, confidence gating, one interaction-log append. Inference
// failures abort and surface; cache and log failures degrade with a
// warning instead of failing the call.
func (a *Agent) Handle(ctx context.Context, req models.Request, threshold float64) (models.GatedResponse, error) {
	key := fingerprint.Key(req)
	requestID := uuid.NewString()

	if entry, ok := a.store.Get(ctx, key); ok {
		resp := gate.Evaluate(&entry.Result, threshold)
		a.record(requestID, req, key, &entry.Result, resp, true, nil, false)
		return resp, nil
	}

	result, err := a.infer(ctx, req)
	if err != nil {
		// an abandoned call leaves no trace; real runtime failures are
		// logged so the audit trail shows the error outcome
		if ctx.Err() == nil {
			a.record(requestID, req, key, nil, models.GatedResponse{}, false, err, false)
		}
		return models.GatedResponse{}, fmt.Errorf("inference for %s request: %w", req.Task, err)
	}

	a.cachePut(ctx, key, result)

	resp := gate.Evaluate(result, threshold)
	a.record(requestID, req, key, result, resp, false, nil, false)
	return resp, nil
}

// StreamEvent is one element of a streamed pipeline call. Partial
// events carry text only; the final event has Done set and carries the
// gated verdict, or Err.
type StreamEvent struct {
	Text     string
	Done     bool
	Response *models.GatedResponse
	Err      error
}

// HandleStream is the incremental variant of Handle. A cache hit replays
// the stored text as a single partial event followed by the gated
// verdict; a miss relays runtime chunks as they arrive. Cancellation
// mid-stream writes no cache entry and logs one record marked
// incomplete.
func (a *Agent) HandleStream(ctx context.Context, req models.Request, threshold float64) (<-chan StreamEvent, error) {
	key := fingerprint.Key(req)
	requestID := uuid.NewString()

	if entry, ok := a.store.Get(ctx, key); ok {
		resp := gate.Evaluate(&entry.Result, threshold)
		a.record(requestID, req, key, &entry.Result, resp, true, nil, false)

		out := make(chan StreamEvent, 2)
		out <- StreamEvent{Text: entry.Result.Text}
		out <- StreamEvent{Done: true, Response: &resp}
		close(out)
		return out, nil
	}

	chunks, err := a.gw.InferStream(ctx, req)
	if err != nil {
		a.record(requestID, req, key, nil, models.GatedResponse{}, false, err, ctx.Err() != nil)
		return nil, fmt.Errorf("start %s stream: %w", req.Task, err)
	}

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		for chunk := range chunks {
			if !chunk.Done {
				out <- StreamEvent{Text: chunk.Text}
				continue
			}
			if chunk.Err != nil {
				a.record(requestID, req, key, nil, models.GatedResponse{}, false, chunk.Err, ctx.Err() != nil)
				out <- StreamEvent{Done: true, Err: chunk.Err}
				return
			}

			a.cachePut(ctx, key, chunk.Result)
			resp := gate.Evaluate(chunk.Result, threshold)
			a.record(requestID, req, key, chunk.Result, resp, false, nil, false)
			out <- StreamEvent{Done: true, Response: &resp}
			return
		}
		// runtime closed the stream without a final chunk
		err := fmt.Errorf("%w: stream ended early", gateway.ErrMalformed)
		a.record(requestID, req, key, nil, models.GatedResponse{}, false, err, ctx.Err() != nil)
		out <- StreamEvent{Done: true, Err: err}
	}()
	return out, nil
}

// infer calls the gateway, with at most one retry after an unavailable
// runtime when retries are configured. Malformed output is never
// retried.
func (a *Agent) infer(ctx context.Context, req models.Request) (*models.InferenceResult, error) {
	result, err := a.gw.Infer(ctx, req)
	if err == nil || a.retryWait <= 0 || !errors.Is(err, gateway.ErrUnavailable) || ctx.Err() != nil {
		return result, err
	}

	a.logger.Warn("inference runtime unavailable, retrying once",
		zap.String("model", req.ModelID),
		zap.Duration("wait", a.retryWait))

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", gateway.ErrUnavailable, ctx.Err())
	case <-time.After(a.retryWait):
	}
	return a.gw.Infer(ctx, req)
}

func (a *Agent) cachePut(ctx context.Context, key string, result *models.InferenceResult) {
	now := time.Now().UTC()
	entry := &models.CacheEntry{
		Fingerprint: key,
		Result:      *result,
		StoredAt:    now,
		ExpiresAt:   now.Add(a.ttl),
	}
	if err := a.store.Put(ctx, key, entry); err != nil {
		a.logger.Warn("cache write failed, continuing uncached", zap.Error(err))
	}
}

// record appends exactly one interaction-log line. Log unavailability
// never fails the call; it is downgraded to a warning.
func (a *Agent) record(requestID string, req models.Request, key string, result *models.InferenceResult, resp models.GatedResponse, cacheHit bool, callErr error, incomplete bool) {
	rec := models.LogRecord{
		Timestamp:    time.Now().UTC(),
		RequestID:    requestID,
		Task:         req.Task,
		ModelID:      req.ModelID,
		Fingerprint:  key,
		InputPreview: preview(req.InputText),
		CacheHit:     cacheHit,
		Accepted:     resp.Accepted,
		Incomplete:   incomplete,
	}
	if result != nil {
		rec.ResultText = preview(result.Text)
		rec.Confidence = result.Confidence
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}
	if err := a.recorder.Append(rec); err != nil {
		a.logger.Warn("interaction log append failed", zap.Error(err))
	}
}

func preview(s string) string {
	s = fingerprint.NormalizeText(s)
	if runes := []rune(s); len(runes) > previewLen {
		return string(runes[:previewLen]) + "…"
	}
	return s
}
