package evaluator

import (
	"context"
	"fmt"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

var obligationsSchema = collaborators.Schema{Raw: map[string]any{
	"type": "object",
	"properties": map[string]any{
		"needs_freshness": map[string]any{"type": "boolean"},
		"freshness_category": map[string]any{
			"type": "string",
			"enum": []any{"live-financials", "stock-news", "tech-news", "tutorials", "historical"},
		},
		"needs_plurality":  map[string]any{"type": "boolean"},
		"required_count":   map[string]any{"type": "integer"},
		"needs_completeness": map[string]any{"type": "boolean"},
		"needs_attribution":  map[string]any{"type": "boolean"},
	},
	"required": []any{"needs_freshness", "needs_plurality", "needs_completeness", "needs_attribution"},
}}

type obligationsResponse struct {
	NeedsFreshness    bool   `json:"needs_freshness"`
	FreshnessCategory string `json:"freshness_category"`
	NeedsPlurality    bool   `json:"needs_plurality"`
	RequiredCount     int    `json:"required_count"`
	NeedsCompleteness bool   `json:"needs_completeness"`
	NeedsAttribution  bool   `json:"needs_attribution"`
}

// ComputeObligations runs the "what does this question need" meta-evaluation
// for the original question, always including STRICT regardless of the
// model's answer (§4.7). Sub-questions never call this: their obligation
// list is empty (any non-empty answer passes).
func (e *Evaluator) ComputeObligations(ctx context.Context, question string, maxBadAttempts int) ([]model.Obligation, collaborators.Usage, error) {
	if maxBadAttempts <= 0 {
		maxBadAttempts = DefaultMaxBadAttempts
	}

	prompt := fmt.Sprintf(
		"Question: %s\n\nDecide which evaluation criteria a correct answer to this question must satisfy: "+
			"does it require up-to-date information (freshness, and if so which category: live-financials, "+
			"stock-news, tech-news, tutorials, or historical), does it ask for multiple distinct items (plurality, "+
			"and how many), does it have multiple named aspects that must all be covered (completeness), and does "+
			"it need source attribution.",
		question,
	)

	var resp obligationsResponse
	usage, err := e.llm.GenerateObject(ctx, obligationsSchema, prompt, nil, &resp)
	if err != nil {
		return nil, usage, fmt.Errorf("evaluator: compute obligations: %w", err)
	}

	obligations := []model.Obligation{
		{Criterion: model.CriterionDefinitive, RemainingAttempts: maxBadAttempts},
	}
	if resp.NeedsFreshness {
		obligations = append(obligations, model.Obligation{
			Criterion:         model.CriterionFreshness,
			RemainingAttempts: maxBadAttempts,
			MaxAgeDays:        maxAgeDaysFor(resp.FreshnessCategory),
		})
	}
	if resp.NeedsPlurality {
		required := resp.RequiredCount
		if required <= 0 {
			required = 2
		}
		obligations = append(obligations, model.Obligation{
			Criterion:         model.CriterionPlurality,
			RemainingAttempts: maxBadAttempts,
			RequiredCount:     required,
		})
	}
	if resp.NeedsCompleteness {
		obligations = append(obligations, model.Obligation{Criterion: model.CriterionCompleteness, RemainingAttempts: maxBadAttempts})
	}
	if resp.NeedsAttribution {
		obligations = append(obligations, model.Obligation{Criterion: model.CriterionAttribution, RemainingAttempts: maxBadAttempts})
	}
	// STRICT always runs last and always applies (§4.7).
	obligations = append(obligations, model.Obligation{Criterion: model.CriterionStrict, RemainingAttempts: maxBadAttempts})

	return obligations, usage, nil
}

func maxAgeDaysFor(category string) float64 {
	if days, ok := freshnessMaxAgeDays[category]; ok {
		return days
	}
	return freshnessMaxAgeDays["tech-news"]
}

// HasFreshnessObligation reports whether obligations includes FRESHNESS,
// used by the orchestrator's step-1 gating rule (§4.6: "if obligations
// include FRESHNESS, step 1 forbids answer and reflect").
func HasFreshnessObligation(obligations []model.Obligation) bool {
	for _, ob := range obligations {
		if ob.Criterion == model.CriterionFreshness {
			return true
		}
	}
	return false
}
