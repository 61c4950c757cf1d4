// Package questions implements the question/gap tracker (C3): the original
// question (never removed), the set of open sub-question gaps, round-robin
// gap selection, and semantic dedup against every question ever asked, per
// spec §3 and §4.3.
package questions

import (
	"context"
	"fmt"
	"math"

	"github.com/antflydb/deepresearch/internal/collaborators"
)

// DefaultSimilarityThreshold is the cosine-similarity cutoff above which two
// questions are considered duplicates (§4.3, §8 round-trip property).
const DefaultSimilarityThreshold = 0.86

// seenQuestion pairs a previously asked question with its embedding, when
// one could be computed.
type seenQuestion struct {
	text string
	emb  []float32 // nil if embedding failed or was never attempted
}

// Tracker owns the original question, the open gap set, and the history of
// every question ever surfaced (for dedup).
type Tracker struct {
	embed     collaborators.Embed
	threshold float64

	original string
	gaps     []string
	everAsked []seenQuestion
}

// New creates a tracker seeded with the original question. embed may be nil,
// in which case ProposeGaps falls back to exact-string dedup only.
func New(ctx context.Context, original string, embed collaborators.Embed, threshold float64) *Tracker {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	t := &Tracker{
		embed:     embed,
		threshold: threshold,
		original:  original,
	}
	t.everAsked = append(t.everAsked, seenQuestion{text: original, emb: t.tryEmbed(ctx, original)})
	return t
}

// Original returns the original question. It is never removed from the
// tracker even once answered (§3 invariant).
func (t *Tracker) Original() string {
	return t.original
}

// Gaps returns the current open sub-question set, in insertion order.
func (t *Tracker) Gaps() []string {
	out := make([]string, len(t.gaps))
	copy(out, t.gaps)
	return out
}

// HasGaps reports whether any sub-question remains open.
func (t *Tracker) HasGaps() bool {
	return len(t.gaps) > 0
}

// Select returns the gap chosen for research step, using round-robin over
// the current gap list: gaps[step mod len(gaps)] (§4.3). If no gaps are
// open, Select returns the original question.
func (t *Tracker) Select(step int) string {
	if len(t.gaps) == 0 {
		return t.original
	}
	idx := step % len(t.gaps)
	if idx < 0 {
		idx += len(t.gaps)
	}
	return t.gaps[idx]
}

// ResolveGap removes question from the open gap set once a sub-question has
// been answered and passed evaluation (§4.7 post-evaluation bookkeeping).
func (t *Tracker) ResolveGap(question string) {
	for i, g := range t.gaps {
		if g == question {
			t.gaps = append(t.gaps[:i], t.gaps[i+1:]...)
			return
		}
	}
}

// ProposeGaps filters candidates down to those not semantically duplicate of
// any question ever asked (including the original and prior reflect
// proposals), appends the survivors to both the open gap set and the
// ever-asked history, and returns them (§4.3 reflect action, §8 dedup law).
func (t *Tracker) ProposeGaps(ctx context.Context, candidates []string) ([]string, error) {
	var accepted []string
	for _, c := range candidates {
		dup, err := t.isDuplicate(ctx, c)
		if err != nil {
			return accepted, fmt.Errorf("questions: checking duplicate: %w", err)
		}
		if dup {
			continue
		}
		accepted = append(accepted, c)
		t.gaps = append(t.gaps, c)
		t.recordAsked(ctx, c)
	}
	return accepted, nil
}

func (t *Tracker) isDuplicate(ctx context.Context, candidate string) (bool, error) {
	for _, prior := range t.everAsked {
		if prior.text == candidate {
			return true, nil
		}
	}
	if t.embed == nil {
		return false, nil
	}

	candEmb := t.tryEmbed(ctx, candidate)
	if candEmb == nil {
		return false, nil
	}
	for _, prior := range t.everAsked {
		if prior.emb == nil {
			continue
		}
		if cosineSimilarity(candEmb, prior.emb) >= t.threshold {
			return true, nil
		}
	}
	return false, nil
}

// recordAsked appends candidate to history and, best-effort, its embedding.
// An embed failure is swallowed: the question is still recorded, just
// without a vector, matching the degrade-gracefully pattern used by the URL
// ledger's rerank_boost.
func (t *Tracker) recordAsked(ctx context.Context, candidate string) {
	t.everAsked = append(t.everAsked, seenQuestion{text: candidate, emb: t.tryEmbed(ctx, candidate)})
}

// tryEmbed returns candidate's embedding, or nil if embedding is unavailable
// or the call failed.
func (t *Tracker) tryEmbed(ctx context.Context, text string) []float32 {
	if t.embed == nil {
		return nil
	}
	vecs, _, err := t.embed.Embed(ctx, []string{text})
	if err != nil || len(vecs) == 0 {
		return nil
	}
	return vecs[0]
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
