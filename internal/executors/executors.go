// Package executors implements the action executors (C6): search, visit,
// answer, reflect, and code, per spec §4.6. Each executor mutates the
// session's ledgers on behalf of the orchestrator and returns the gates it
// sets for the next step: search, visit, answer and reflect each disable
// their own action; Code returns no gate, and Gates has no field for code.
package executors

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/knowledge"
	"github.com/antflydb/deepresearch/internal/model"
	"github.com/antflydb/deepresearch/internal/questions"
	"github.com/antflydb/deepresearch/internal/tracker"
	"github.com/antflydb/deepresearch/internal/urlledger"
)

// SearchTimeout, FetchTimeout, EmbedTimeout, ClassifyTimeout are the
// explicit per-call timeouts named in §5.
const (
	SearchTimeout   = 60 * time.Second
	FetchTimeout    = 60 * time.Second
	EmbedTimeout    = 30 * time.Second
	ClassifyTimeout = 30 * time.Second
)

// MaxURLsPerStep, MaxURLsReadPerStep, MaxQueriesPerStep, MaxReflectPerStep,
// MaxKnownURLs are the hard caps named in §5 backpressure.
const (
	MaxURLsPerStep     = 4
	MaxURLsReadPerStep = 10
	MaxQueriesPerStep  = 4
	MaxReflectPerStep  = 4
	MaxKnownURLs       = 200
)

const dedupSimilarityThreshold = 0.86

// Collaborators bundles every external dependency an executor may call.
type Collaborators struct {
	Search       collaborators.Search
	Fetch        collaborators.Fetch
	Embed        collaborators.Embed
	Rerank       collaborators.Rerank
	ClassifySpam collaborators.ClassifySpam
	CherryPick   collaborators.CherryPick
	LastModified collaborators.LastModified
	Sandbox      collaborators.CodeSandbox
	LLM          collaborators.LLM
}

// Session bundles the ledgers an executor mutates. It is constructed once
// per research session and threaded through every step by the orchestrator
// (§9 "replace global mutable state with a session-scoped context object").
type Session struct {
	URLs           *urlledger.Ledger
	Knowledge      *knowledge.Store
	Questions      *questions.Tracker
	Tracker        *tracker.Tracker
	Collab         Collaborators
	NoDirectAnswer bool

	// OutboundLimiter, when non-nil, throttles outbound search/fetch calls
	// (§5 politeness), in the same requests-per-second shape as the
	// teacher's eval.Runner rate limiter.
	OutboundLimiter *rate.Limiter
}

// NewOutboundLimiter builds a limiter from a requests-per-minute budget,
// following the teacher's eval.Runner conversion (rpm/60, burst capped to
// [1,5]). ratePerMinute <= 0 disables throttling (returns nil).
func NewOutboundLimiter(ratePerMinute int) *rate.Limiter {
	if ratePerMinute <= 0 {
		return nil
	}
	rps := float64(ratePerMinute) / 60.0
	burst := ratePerMinute / 4
	if burst < 1 {
		burst = 1
	}
	if burst > 5 {
		burst = 5
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func throttle(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// Gates reports which actions the executor that just ran must disable for
// the following step (§4.6 "Disable X for the next step").
type Gates struct {
	DisableSearch  bool
	DisableVisit   bool
	DisableReflect bool
	DisableAnswer  bool
}

func recordUsage(s *Session, tool string, usage collaborators.Usage) {
	s.Tracker.Record(tool, usage)
}

func dedupSemantic(ctx context.Context, embed collaborators.Embed, candidates, against []string, threshold float64) []string {
	if len(candidates) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = dedupSimilarityThreshold
	}

	seen := make(map[string]bool, len(against))
	for _, a := range against {
		seen[a] = true
	}

	var survivors []string
	var againstEmb, candEmb [][]float32
	if embed != nil && len(against) > 0 {
		var err error
		ctx2, cancel := context.WithTimeout(ctx, EmbedTimeout)
		againstEmb, _, err = embed.Embed(ctx2, against)
		cancel()
		if err != nil {
			againstEmb = nil
		}
	}
	if embed != nil {
		var err error
		ctx2, cancel := context.WithTimeout(ctx, EmbedTimeout)
		candEmb, _, err = embed.Embed(ctx2, candidates)
		cancel()
		if err != nil {
			candEmb = nil
		}
	}

	for i, c := range candidates {
		if seen[c] {
			continue
		}
		dup := false
		if candEmb != nil && againstEmb != nil && i < len(candEmb) {
			for _, ae := range againstEmb {
				if cosineSimilarity(candEmb[i], ae) >= threshold {
					dup = true
					break
				}
			}
		}
		if dup {
			continue
		}
		seen[c] = true
		survivors = append(survivors, c)
	}
	return survivors
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

// fanOutResult pairs one fan-out task's outcome with its originating item,
// preserving both success and failure for the caller's bookkeeping (e.g.
// visit needs to mark bad-hostnames on failure, not just drop them).
type fanOutResult[T, R any] struct {
	Item T
	Val  R
	Err  error
}

// fanOut runs fn(item) for every item in parallel and collects every
// outcome, in input order. A single item's error never aborts the others
// (§5 "tasks are independent"); ledger mutation is left to the caller,
// applied on the joining goroutine (§5, §9 "fold on the joining side").
func fanOut[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) []fanOutResult[T, R] {
	results := make([]fanOutResult[T, R], len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		results[i].Item = item
		g.Go(func() error {
			r, err := fn(gctx, item)
			results[i].Val = r
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}
