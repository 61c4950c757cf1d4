// Package embed adapts internal/embeddings.Embedder to collaborators.Embed,
// grounded on that package's EmbedText convenience wrapper
// (internal/embeddings/embedder.go).
package embed

import (
	"context"
	"fmt"

	"github.com/antflydb/deepresearch/internal/embeddings"
)

// Adapter implements collaborators.Embed on top of an embeddings.Embedder.
type Adapter struct {
	embedder embeddings.Embedder
}

// New returns an Adapter backed by embedder.
func New(embedder embeddings.Embedder) *Adapter {
	return &Adapter{embedder: embedder}
}

// Embed generates dense vectors for texts and reports 0 for the token count
// since internal/embeddings.Embedder does not expose per-call usage.
func (a *Adapter) Embed(ctx context.Context, texts []string) ([][]float32, int, error) {
	vecs, err := embeddings.EmbedText(ctx, a.embedder, texts)
	if err != nil {
		return nil, 0, fmt.Errorf("embed: %w", err)
	}
	return vecs, 0, nil
}
