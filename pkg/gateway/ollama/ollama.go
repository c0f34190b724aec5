// Package ollama adapts a local Ollama runtime to the gateway contract.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mailmind-ai/mailmind/pkg/gateway"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Config holds the Ollama adapter settings.
type Config struct {
	// URL is the runtime base URL, e.g. http://localhost:11434.
	URL string `yaml:"url"`
	// Timeout bounds a single blocking generation.
	Timeout time.Duration `yaml:"timeout"`
	// Confidence is the score reported for successful generations.
	// Ollama exposes no per-response confidence, so the adapter owns
	// this value; it is clamped to [0,1].
	Confidence float64 `yaml:"confidence"`
}

// Adapter calls Ollama's /api/generate endpoint.
type Adapter struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates an Adapter. A zero Timeout defaults to 120s and a zero
// Confidence to 0.9.
func New(cfg Config, logger *zap.Logger) *Adapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = 0.9
	}
	if cfg.Confidence < 0 {
		cfg.Confidence = 0
	}
	if cfg.Confidence > 1 {
		cfg.Confidence = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Response  string    `json:"response"`
	Done      bool      `json:"done"`
}

// Infer runs one blocking generation.
func (a *Adapter) Infer(ctx context.Context, req models.Request) (*models.InferenceResult, error) {
	resp, err := a.doGenerate(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", gateway.ErrMalformed, err)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return nil, fmt.Errorf("%w: empty generation", gateway.ErrMalformed)
	}

	return a.result(text, req.ModelID), nil
}

// InferStream runs an incremental generation over Ollama's NDJSON
// stream. The final chunk carries the assembled result; cancellation
// mid-stream yields a final chunk with ErrUnavailable.
func (a *Adapter) InferStream(ctx context.Context, req models.Request) (<-chan gateway.Chunk, error) {
	resp, err := a.doGenerate(ctx, req, true)
	if err != nil {
		return nil, err
	}

	ch := make(chan gateway.Chunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		var full strings.Builder
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				ch <- gateway.Chunk{Done: true, Err: fmt.Errorf("%w: %v", gateway.ErrUnavailable, ctx.Err())}
				return
			default:
			}

			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var part generateResponse
			if err := json.Unmarshal(line, &part); err != nil {
				ch <- gateway.Chunk{Done: true, Err: fmt.Errorf("%w: decode chunk: %v", gateway.ErrMalformed, err)}
				return
			}
			if part.Response != "" {
				full.WriteString(part.Response)
				ch <- gateway.Chunk{Text: part.Response}
			}
			if part.Done {
				text := strings.TrimSpace(full.String())
				if text == "" {
					ch <- gateway.Chunk{Done: true, Err: fmt.Errorf("%w: empty generation", gateway.ErrMalformed)}
					return
				}
				ch <- gateway.Chunk{Done: true, Result: a.result(text, req.ModelID)}
				return
			}
		}

		if err := scanner.Err(); err != nil {
			ch <- gateway.Chunk{Done: true, Err: fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)}
			return
		}
		// stream ended without a done marker
		ch <- gateway.Chunk{Done: true, Err: fmt.Errorf("%w: truncated stream", gateway.ErrMalformed)}
	}()
	return ch, nil
}

func (a *Adapter) doGenerate(ctx context.Context, req models.Request, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(generateRequest{
		Model:   req.ModelID,
		Prompt:  req.InputText,
		Stream:  stream,
		Options: convertOptions(req.Parameters),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(a.cfg.URL, "/")+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	a.logger.Debug("ollama generate",
		zap.String("model", req.ModelID),
		zap.Bool("stream", stream),
		zap.Int("prompt_len", len(req.InputText)))

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: runtime returned %d", gateway.ErrUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: runtime returned %d", gateway.ErrMalformed, resp.StatusCode)
	}
	return resp, nil
}

func (a *Adapter) result(text, modelID string) *models.InferenceResult {
	return &models.InferenceResult{
		Text:        text,
		Confidence:  a.cfg.Confidence,
		ModelID:     modelID,
		GeneratedAt: time.Now().UTC(),
	}
}

// convertOptions maps string request parameters onto Ollama's typed
// options (temperature, num_predict, ...), preserving unparseable
// values as strings.
func convertOptions(params map[string]string) map[string]any {
	if len(params) == 0 {
		return nil
	}
	opts := make(map[string]any, len(params))
	for k, v := range params {
		switch {
		case v == "true" || v == "false":
			opts[k] = v == "true"
		default:
			if i, err := strconv.ParseInt(v, 10, 64); err == nil {
				opts[k] = i
			} else if f, err := strconv.ParseFloat(v, 64); err == nil {
				opts[k] = f
			} else {
				opts[k] = v
			}
		}
	}
	return opts
}
