// Package gate applies the confidence acceptance policy to inference
// results. Rejection annotates; it never discards the text.
package gate

import (
	"fmt"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// LowConfidencePrefix marks text that did not clear the gate.
const LowConfidencePrefix = "[Low confidence] "

// Evaluate gates a result against threshold. The boundary is inclusive:
// confidence equal to the threshold is accepted. The threshold is
// supplied by the caller (per task, from config), never baked in here.
func Evaluate(result *models.InferenceResult, threshold float64) models.GatedResponse {
	if result.Confidence >= threshold {
		return models.GatedResponse{
			Text:       result.Text,
			Accepted:   true,
			Confidence: result.Confidence,
		}
	}
	return models.GatedResponse{
		Text:       LowConfidencePrefix + result.Text,
		Accepted:   false,
		Confidence: result.Confidence,
		Annotation: fmt.Sprintf("confidence %.2f below threshold %.2f", result.Confidence, threshold),
	}
}
