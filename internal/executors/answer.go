package executors

import (
	"context"
	"strings"

	"github.com/antflydb/deepresearch/internal/model"
	"github.com/antflydb/deepresearch/internal/urlledger"
)

// AnswerResult is the prepared candidate answer action, ready for the
// evaluator (C7) or, in the trivial-short-circuit case, already final.
type AnswerResult struct {
	Action      model.Action
	IsTrivial   bool
	Gates       Gates
}

// Answer normalizes and enriches the candidate answer's references, then
// applies the trivial-question short-circuit (§8 Boundaries): a step-1
// answer with zero references and NoDirectAnswer disabled terminates
// immediately with no evaluation. Otherwise the prepared action is handed to
// the evaluator by the orchestrator.
func Answer(ctx context.Context, s *Session, step int, action model.AnswerAction) AnswerResult {
	gates := Gates{DisableAnswer: true}

	if step == 1 && len(action.References) == 0 && !s.NoDirectAnswer {
		final := model.Action{Type: model.ActionAnswer, Answer: &action, IsFinal: true}
		return AnswerResult{Action: final, IsTrivial: true, Gates: gates}
	}

	refs := normalizeReferences(s.URLs, action.References)
	refs = enrichReferenceDates(ctx, s, refs)
	refs = dedupReferences(refs)
	action.References = refs

	return AnswerResult{
		Action: model.Action{Type: model.ActionAnswer, Answer: &action},
		Gates:  gates,
	}
}

// normalizeReferences maps every reference URL through the normalizer,
// dropping references whose URL cannot be normalized to a known ledger
// entry (§8 invariant 4: "every emitted reference URL is the output of the
// normalizer applied to some observed URL").
func normalizeReferences(ledger *urlledger.Ledger, refs []model.Reference) []model.Reference {
	out := make([]model.Reference, 0, len(refs))
	for _, r := range refs {
		key, err := urlledger.Normalize(r.URL)
		if err != nil {
			continue
		}
		r.URL = key
		if rec, ok := ledger.Get(key); ok && r.Title == "" {
			r.Title = rec.Title
		}
		out = append(out, r)
	}
	return out
}

// enrichReferenceDates fans out LastModified lookups for references lacking
// a DateTime, applying results on the joining goroutine (§5).
func enrichReferenceDates(ctx context.Context, s *Session, refs []model.Reference) []model.Reference {
	if s.Collab.LastModified == nil {
		return refs
	}

	var pending []int
	for i, r := range refs {
		if r.DateTime == "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return refs
	}

	results := fanOut(ctx, pending, func(ctx context.Context, idx int) (string, error) {
		lctx, cancel := context.WithTimeout(ctx, FetchTimeout)
		defer cancel()
		date, confidence, err := s.Collab.LastModified.LastModified(lctx, refs[idx].URL)
		if err != nil || confidence < 70 {
			return "", nil
		}
		return date.Format("2006-01-02"), nil
	})

	for _, r := range results {
		if r.Val != "" {
			refs[r.Item].DateTime = r.Val
		}
	}
	return refs
}

// dedupReferences drops references whose (URL, exact quote) pair repeats.
func dedupReferences(refs []model.Reference) []model.Reference {
	seen := make(map[string]bool, len(refs))
	out := make([]model.Reference, 0, len(refs))
	for _, r := range refs {
		key := strings.ToLower(r.URL) + "\x00" + strings.TrimSpace(r.ExactQuote)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
