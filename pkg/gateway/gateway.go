// Package gateway abstracts the model runtime behind a narrow inference
// contract. Adapters are the sole source of confidence scores; the rest
// of the pipeline treats them as opaque values in [0,1].
package gateway

import (
	"context"
	"errors"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// ErrUnavailable indicates the model runtime could not be reached or the
// call was cancelled before completion. Callers may retry.
var ErrUnavailable = errors.New("inference runtime unavailable")

// ErrMalformed indicates the runtime responded but produced unusable
// output (empty text, undecodable body). Not retryable.
var ErrMalformed = errors.New("inference output malformed")

// Chunk is one element of a streamed inference. Intermediate chunks
// carry partial text; the final chunk has Done set and carries the
// definitive result, or Err on failure. The channel is closed after the
// final chunk.
type Chunk struct {
	Text   string
	Done   bool
	Result *models.InferenceResult
	Err    error
}

// Gateway submits prompts to a model runtime. Adapters never retry on
// their own; retry policy belongs to the caller.
type Gateway interface {
	// Infer runs a blocking generation for req. Cancellation of ctx is
	// reported as ErrUnavailable.
	Infer(ctx context.Context, req models.Request) (*models.InferenceResult, error)

	// InferStream runs an incremental generation. The returned channel
	// yields partial chunks and is closed after a final chunk carrying
	// either the definitive result or an error. Cancelling ctx closes
	// the stream without side effects.
	InferStream(ctx context.Context, req models.Request) (<-chan Chunk, error)
}
