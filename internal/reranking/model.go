// Package reranking defines the pluggable cross-encoder contract the
// shortlist ranker (C1) sits behind, through the collaborators/rerank
// adapter, so either an ONNX model or a hosted API can serve relevance
// scores without the caller knowing which.
package reranking

import (
	"context"
	"fmt"
)

// Model scores pre-rendered document texts against a query. Implementations
// back either a locally-loaded cross-encoder (ONNX) or a hosted reranking
// API.
type Model interface {
	// Rerank returns one relevance score per prompt, parallel to prompts.
	// Higher scores indicate higher relevance.
	Rerank(ctx context.Context, query string, prompts []string) ([]float32, error)

	// Close releases any resources held by the model (sessions, connections, etc.)
	Close() error
}

// ValidateScores checks that scores is parallel to the documents it was
// computed from, the one invariant every Model implementation must honor.
func ValidateScores(scores []float32, documentCount int) error {
	if len(scores) != documentCount {
		return fmt.Errorf("reranking: model returned %d scores for %d documents", len(scores), documentCount)
	}
	return nil
}
