// Package evaluator implements the multi-criterion answer evaluator (C7):
// sequential criterion checks with first-failure-wins, the original
// question's obligation computation, and the STRICT improvement-plan loop,
// per spec §4.7.
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

// DefaultMaxBadAttempts is the default per-criterion retry budget (§6 options).
const DefaultMaxBadAttempts = 2

// freshnessMaxAgeDays maps a freshness category to its maximum age in days,
// per the example table in §4.7 ("live financials 0.1d, stock news 1d, tech
// news 7d, tutorials 180d, historical ∞").
var freshnessMaxAgeDays = map[string]float64{
	"live-financials": 0.1,
	"stock-news":      1,
	"tech-news":       7,
	"tutorials":       180,
	"historical":      -1, // -1 signals unbounded (∞)
}

// Evaluator runs criterion checks against candidate answers using an LLM
// collaborator as the judge, in the teacher's LLM-judge style
// (evalaf/genkit/evaluators.go, evalaf/redteam/llm_judge.go).
type Evaluator struct {
	llm   collaborators.LLM
	model string
}

// New returns an Evaluator backed by llm.
func New(llm collaborators.LLM) *Evaluator {
	return &Evaluator{llm: llm}
}

// Verdict is the outcome of evaluating one candidate answer against its
// obligations: either all criteria passed, or the first failing criterion
// plus its produced improvement plan (STRICT only).
type Verdict struct {
	Passed          bool
	FailedCriterion model.Criterion
	Reasoning       string
	ImprovementPlan string
}

// Evaluate runs obligations in sequence, returning on the first failure
// (§4.7 "first-failure-wins").
func (e *Evaluator) Evaluate(ctx context.Context, question string, answer model.AnswerAction, obligations []model.Obligation) (Verdict, collaborators.Usage, error) {
	var total collaborators.Usage
	for _, ob := range obligations {
		pass, reasoning, plan, usage, err := e.checkCriterion(ctx, question, answer, ob)
		total = combineUsage(total, usage)
		if err != nil {
			return Verdict{}, total, fmt.Errorf("evaluator: %s: %w", ob.Criterion, err)
		}
		if !pass {
			return Verdict{
				Passed:          false,
				FailedCriterion: ob.Criterion,
				Reasoning:       reasoning,
				ImprovementPlan: plan,
			}, total, nil
		}
	}
	return Verdict{Passed: true}, total, nil
}

func (e *Evaluator) checkCriterion(ctx context.Context, question string, answer model.AnswerAction, ob model.Obligation) (pass bool, reasoning, plan string, usage collaborators.Usage, err error) {
	switch ob.Criterion {
	case model.CriterionDefinitive:
		return e.judge(ctx, definitivePrompt(question, answer))
	case model.CriterionFreshness:
		return e.judgeFreshness(ctx, question, answer, ob.MaxAgeDays)
	case model.CriterionPlurality:
		return e.judgePlurality(ctx, question, answer, ob.RequiredCount)
	case model.CriterionCompleteness:
		return e.judge(ctx, completenessPrompt(question, answer))
	case model.CriterionAttribution:
		return judgeAttribution(answer)
	case model.CriterionStrict:
		return e.judgeStrict(ctx, question, answer)
	default:
		return false, "", "", collaborators.Usage{}, fmt.Errorf("unknown criterion %q", ob.Criterion)
	}
}

// judgeResponse is the shared wire shape every LLM-judge prompt asks for.
type judgeResponse struct {
	Pass            bool   `json:"pass"`
	Reasoning       string `json:"reasoning"`
	ImprovementPlan string `json:"improvement_plan"`
}

var judgeSchema = collaborators.Schema{Raw: map[string]any{
	"type": "object",
	"properties": map[string]any{
		"pass":             map[string]any{"type": "boolean"},
		"reasoning":        map[string]any{"type": "string"},
		"improvement_plan": map[string]any{"type": "string"},
	},
	"required": []any{"pass", "reasoning"},
}}

func (e *Evaluator) judge(ctx context.Context, prompt string) (bool, string, string, collaborators.Usage, error) {
	var resp judgeResponse
	usage, err := e.llm.GenerateObject(ctx, judgeSchema, prompt, nil, &resp)
	if err != nil {
		return false, "", "", usage, err
	}
	return resp.Pass, resp.Reasoning, resp.ImprovementPlan, usage, nil
}

func (e *Evaluator) judgeFreshness(ctx context.Context, question string, answer model.AnswerAction, maxAgeDays float64) (bool, string, string, collaborators.Usage, error) {
	if maxAgeDays < 0 {
		// Historical: unbounded age, always passes (§4.7 category table).
		return true, "historical category: no freshness bound", "", collaborators.Usage{}, nil
	}
	prompt := fmt.Sprintf(
		"Question: %s\nAnswer: %s\nReferences: %s\n\nDoes the cited or implied information fall within %.2f days of today? Respond with pass=true only if it does.",
		question, answer.Text, renderReferences(answer.References), maxAgeDays,
	)
	return e.judge(ctx, prompt)
}

func (e *Evaluator) judgePlurality(ctx context.Context, question string, answer model.AnswerAction, required int) (bool, string, string, collaborators.Usage, error) {
	if required <= 1 {
		return true, "no plurality requirement", "", collaborators.Usage{}, nil
	}
	prompt := fmt.Sprintf(
		"Question: %s\nAnswer: %s\n\nThe question asks for at least %d distinct, non-redundant items. Does the answer provide at least that many? Respond with pass=true only if it does, and explain in reasoning how many distinct items you counted.",
		question, answer.Text, required,
	)
	return e.judge(ctx, prompt)
}

func judgeAttribution(answer model.AnswerAction) (bool, string, string, collaborators.Usage, error) {
	for _, r := range answer.References {
		if strings.TrimSpace(r.ExactQuote) != "" {
			return true, "at least one exact-quote reference present", "", collaborators.Usage{}, nil
		}
	}
	return false, "no reference carries an exact quote", "", collaborators.Usage{}, nil
}

func (e *Evaluator) judgeStrict(ctx context.Context, question string, answer model.AnswerAction) (bool, string, string, collaborators.Usage, error) {
	prompt := fmt.Sprintf(
		"You are a harsh, skeptical reviewer. Question: %s\nAnswer: %s\nReferences: %s\n\n"+
			"Find every flaw: unsupported claims, hedging, missing context, weak sourcing. "+
			"If the answer is not airtight, fail it and write a concrete improvement_plan describing "+
			"exactly what evidence or structure the next attempt must add.",
		question, answer.Text, renderReferences(answer.References),
	)
	return e.judge(ctx, prompt)
}

func definitivePrompt(question string, answer model.AnswerAction) string {
	return fmt.Sprintf(
		"Question: %s\nAnswer: %s\n\nIs this answer definitive: not hedged, not a refusal, not a redirection to search elsewhere? Respond pass=true only if it commits to a concrete answer.",
		question, answer.Text,
	)
}

func completenessPrompt(question string, answer model.AnswerAction) string {
	return fmt.Sprintf(
		"Question: %s\nAnswer: %s\n\nDoes the answer address every explicitly named aspect of the question (synonyms count)? Respond pass=true only if every aspect is covered.",
		question, answer.Text,
	)
}

func renderReferences(refs []model.Reference) string {
	var b strings.Builder
	for _, r := range refs {
		fmt.Fprintf(&b, "[%s] %q (%s)\n", r.URL, r.ExactQuote, r.DateTime)
	}
	return b.String()
}

func combineUsage(a, b collaborators.Usage) collaborators.Usage {
	return collaborators.Usage{
		PromptTokens:     a.PromptTokens + b.PromptTokens,
		CompletionTokens: a.CompletionTokens + b.CompletionTokens,
		TotalTokens:      a.TotalTokens + b.TotalTokens,
	}
}
