package evaluator

import (
	"context"
	"fmt"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

// PostEvalOutcome tells the orchestrator what bookkeeping to apply after one
// Evaluate call, per §4.7 "Post-evaluation".
type PostEvalOutcome struct {
	Terminate       bool
	ResolvedGap     string // non-empty when a sub-question passed and must be removed from gaps
	FailureQAItem   *model.KnowledgeItem
	ReviewerPlan    string // non-empty only on a STRICT failure
	DisableAnswer   bool
	UpdatedObligations []model.Obligation
}

// ApplyVerdict performs the bookkeeping §4.7 specifies after evaluating one
// answer: decrementing the failed criterion's remaining attempts, recording
// a STRICT improvement plan, and producing the failure-analysis QA item via
// a separate error-analysis call.
func (e *Evaluator) ApplyVerdict(ctx context.Context, question string, isOriginal bool, answer model.AnswerAction, obligations []model.Obligation, verdict Verdict) (PostEvalOutcome, collaborators.Usage, error) {
	if verdict.Passed {
		if isOriginal {
			return PostEvalOutcome{Terminate: true}, collaborators.Usage{}, nil
		}
		return PostEvalOutcome{ResolvedGap: question}, collaborators.Usage{}, nil
	}

	updated, plan := decrementAndCollectPlan(obligations, verdict)

	analysis, usage, err := e.analyzeFailure(ctx, question, answer, verdict)
	if err != nil {
		return PostEvalOutcome{
			DisableAnswer:      true,
			ReviewerPlan:       plan,
			UpdatedObligations: updated,
		}, usage, fmt.Errorf("evaluator: analyze failure: %w", err)
	}

	item := model.KnowledgeItem{
		Kind:     model.KindQA,
		Question: "why is this answer bad? reflect",
		Answer:   analysis,
	}

	return PostEvalOutcome{
		DisableAnswer:      true,
		ReviewerPlan:       plan,
		FailureQAItem:      &item,
		UpdatedObligations: updated,
	}, usage, nil
}

func decrementAndCollectPlan(obligations []model.Obligation, verdict Verdict) ([]model.Obligation, string) {
	updated := make([]model.Obligation, len(obligations))
	copy(updated, obligations)

	var plan string
	for i, ob := range updated {
		if ob.Criterion != verdict.FailedCriterion {
			continue
		}
		updated[i].RemainingAttempts--
		if ob.Criterion == model.CriterionStrict {
			updated[i].ImprovementPlan = verdict.ImprovementPlan
			plan = verdict.ImprovementPlan
		}
	}
	return updated, plan
}

var errorAnalysisSchema = collaborators.Schema{Raw: map[string]any{
	"type": "object",
	"properties": map[string]any{
		"recap":       map[string]any{"type": "string", "description": "What was attempted."},
		"blame":       map[string]any{"type": "string", "description": "What specifically went wrong."},
		"improvement": map[string]any{"type": "string", "description": "What to do differently next attempt."},
	},
	"required": []any{"recap", "blame", "improvement"},
}}

type errorAnalysisResponse struct {
	Recap       string `json:"recap"`
	Blame       string `json:"blame"`
	Improvement string `json:"improvement"`
}

// analyzeFailure produces the recap/blame/improvement triple §4.7 attaches
// to the failure QA KnowledgeItem, via a separate LLM call from the
// criterion judge that failed.
func (e *Evaluator) analyzeFailure(ctx context.Context, question string, answer model.AnswerAction, verdict Verdict) (string, collaborators.Usage, error) {
	prompt := fmt.Sprintf(
		"Question: %s\nAnswer: %s\nFailed criterion: %s\nReviewer reasoning: %s\n\n"+
			"Produce a recap of what was attempted, assign blame for the specific failure, and state one "+
			"concrete improvement for the next attempt.",
		question, answer.Text, verdict.FailedCriterion, verdict.Reasoning,
	)

	var resp errorAnalysisResponse
	usage, err := e.llm.GenerateObject(ctx, errorAnalysisSchema, prompt, nil, &resp)
	if err != nil {
		return "", usage, err
	}
	return fmt.Sprintf("Recap: %s\nBlame: %s\nImprovement: %s", resp.Recap, resp.Blame, resp.Improvement), usage, nil
}
