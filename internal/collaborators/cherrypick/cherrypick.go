// Package cherrypick implements collaborators.CherryPick by composing
// internal/chunking.Chunker with an Embed collaborator: the long text is
// split into chunks, each chunk is embedded alongside the question, and the
// top-scoring 2-5 chunks by cosine similarity are joined into the short
// extract returned to the visit executor. Grounded on the late-chunking
// approach in original_source/deepresearch (jina_latechunk.py) and on the
// teacher's internal/chunking.Chunker interface.
package cherrypick

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/antflydb/deepresearch/internal/chunking"
	"github.com/antflydb/deepresearch/internal/collaborators"
)

const (
	minSnippets = 2
	maxSnippets = 5
)

// Adapter implements collaborators.CherryPick on top of a Chunker and Embed
// collaborator.
type Adapter struct {
	chunker chunking.Chunker
	embed   collaborators.Embed
	opts    chunking.ChunkOptions
}

// New returns an Adapter backed by chunker and embed, chunking with opts.
func New(chunker chunking.Chunker, embed collaborators.Embed, opts chunking.ChunkOptions) *Adapter {
	return &Adapter{chunker: chunker, embed: embed, opts: opts}
}

// CherryPick splits longText into chunks, ranks them by cosine similarity to
// question, and joins the top 2-5 in original order.
func (a *Adapter) CherryPick(ctx context.Context, question, longText string) (string, error) {
	chunks, err := a.chunker.Chunk(ctx, longText, a.opts)
	if err != nil {
		return "", fmt.Errorf("cherrypick: chunk: %w", err)
	}
	if len(chunks) == 0 {
		return "", nil
	}
	if len(chunks) <= minSnippets {
		return joinChunks(chunks), nil
	}

	texts := make([]string, len(chunks)+1)
	texts[0] = question
	for i, c := range chunks {
		texts[i+1] = c.Text
	}

	vecs, _, err := a.embed.Embed(ctx, texts)
	if err != nil || len(vecs) != len(texts) {
		// Degrade gracefully: return the first few chunks verbatim rather
		// than failing the visit step (§7 transient-failure policy).
		return joinChunks(chunks[:min(maxSnippets, len(chunks))]), nil
	}

	questionVec := vecs[0]
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(chunks))
	for i := range chunks {
		scores[i] = scored{idx: i, score: cosineSimilarity(questionVec, vecs[i+1])}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := maxSnippets
	if n > len(scores) {
		n = len(scores)
	}
	if n < minSnippets {
		n = min(minSnippets, len(scores))
	}
	top := scores[:n]
	sort.Slice(top, func(i, j int) bool { return top[i].idx < top[j].idx }) // restore reading order

	selected := make([]chunking.Chunk, len(top))
	for i, s := range top {
		selected[i] = chunks[s.idx]
	}
	return joinChunks(selected), nil
}

func joinChunks(chunks []chunking.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n...\n")
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
