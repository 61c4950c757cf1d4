// Package rerank adapts internal/reranking.Model to collaborators.Rerank.
// The teacher interface (internal/reranking/model.go) returns a []float32
// parallel to the input documents; collaborators.Rerank wants (index, score)
// pairs, so this adapter zips the two shapes together.
package rerank

import (
	"context"
	"fmt"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/reranking"
)

// Adapter implements collaborators.Rerank on top of a reranking.Model.
type Adapter struct {
	model reranking.Model
}

// New returns an Adapter backed by model.
func New(model reranking.Model) *Adapter {
	return &Adapter{model: model}
}

// Rerank scores documents against query and zips the parallel score slice
// reranking.Model.Rerank returns into indexed RerankResults.
func (a *Adapter) Rerank(ctx context.Context, query string, documents []string) ([]collaborators.RerankResult, error) {
	scores, err := a.model.Rerank(ctx, query, documents)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	if err := reranking.ValidateScores(scores, len(documents)); err != nil {
		return nil, err
	}

	out := make([]collaborators.RerankResult, len(scores))
	for i, score := range scores {
		out[i] = collaborators.RerankResult{Index: i, RelevanceScore: score}
	}
	return out, nil
}
