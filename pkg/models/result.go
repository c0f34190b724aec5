package models

import "time"

// InferenceResult is a completed model generation with the runtime's own
// confidence in it. Only gateway adapters construct these.
type InferenceResult struct {
	Text        string    `json:"text"`
	Confidence  float64   `json:"confidence"`
	ModelID     string    `json:"model_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GatedResponse is what the pipeline returns to callers: the generated
// text plus the gate's verdict. A rejected response still carries the
// full text, prefixed with the low-confidence marker; Annotation is set
// only when Accepted is false.
type GatedResponse struct {
	Text       string  `json:"text"`
	Accepted   bool    `json:"accepted"`
	Confidence float64 `json:"confidence"`
	Annotation string  `json:"annotation,omitempty"`
}
