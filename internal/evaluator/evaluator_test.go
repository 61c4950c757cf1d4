package evaluator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

// scriptedLLM replays a fixed queue of JSON payloads, one per GenerateObject
// call, in order — enough to drive the evaluator's multi-criterion sequence
// deterministically.
type scriptedLLM struct {
	payloads []string
	calls    int
}

func (s *scriptedLLM) GenerateObject(ctx context.Context, schema collaborators.Schema, systemPrompt string, messages []collaborators.Message, dst any) (collaborators.Usage, error) {
	if s.calls >= len(s.payloads) {
		return collaborators.Usage{}, nil
	}
	p := s.payloads[s.calls]
	s.calls++
	return collaborators.Usage{TotalTokens: 1}, json.Unmarshal([]byte(p), dst)
}

func TestEvaluatePassesAllCriteria(t *testing.T) {
	llm := &scriptedLLM{payloads: []string{
		`{"pass":true,"reasoning":"definitive"}`,
		`{"pass":true,"reasoning":"strict"}`,
	}}
	e := New(llm)
	obligations := []model.Obligation{
		{Criterion: model.CriterionDefinitive},
		{Criterion: model.CriterionStrict},
	}

	verdict, usage, err := e.Evaluate(context.Background(), "q", model.AnswerAction{Text: "a"}, obligations)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !verdict.Passed {
		t.Errorf("verdict = %+v, want Passed", verdict)
	}
	if usage.TotalTokens != 2 {
		t.Errorf("usage.TotalTokens = %d, want 2", usage.TotalTokens)
	}
}

func TestEvaluateStopsAtFirstFailure(t *testing.T) {
	llm := &scriptedLLM{payloads: []string{
		`{"pass":false,"reasoning":"hedged"}`,
		`{"pass":true,"reasoning":"should never be reached"}`,
	}}
	e := New(llm)
	obligations := []model.Obligation{
		{Criterion: model.CriterionDefinitive},
		{Criterion: model.CriterionStrict},
	}

	verdict, _, err := e.Evaluate(context.Background(), "q", model.AnswerAction{Text: "a"}, obligations)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if verdict.Passed {
		t.Error("expected Evaluate to fail at the first failing criterion")
	}
	if verdict.FailedCriterion != model.CriterionDefinitive {
		t.Errorf("FailedCriterion = %v, want DEFINITIVE", verdict.FailedCriterion)
	}
	if llm.calls != 1 {
		t.Errorf("llm.calls = %d, want 1 (first-failure-wins should short-circuit)", llm.calls)
	}
}

func TestJudgeFreshnessHistoricalAlwaysPasses(t *testing.T) {
	e := New(&scriptedLLM{})
	pass, _, _, _, err := e.judgeFreshness(context.Background(), "q", model.AnswerAction{}, -1)
	if err != nil {
		t.Fatalf("judgeFreshness: %v", err)
	}
	if !pass {
		t.Error("expected historical category (maxAgeDays < 0) to always pass")
	}
}

func TestJudgePluralityNoRequirementAlwaysPasses(t *testing.T) {
	e := New(&scriptedLLM{})
	pass, _, _, _, err := e.judgePlurality(context.Background(), "q", model.AnswerAction{}, 0)
	if err != nil {
		t.Fatalf("judgePlurality: %v", err)
	}
	if !pass {
		t.Error("expected required <= 1 to always pass without invoking the LLM")
	}
}

func TestJudgeAttributionRequiresExactQuote(t *testing.T) {
	pass, _, _, _, _ := judgeAttribution(model.AnswerAction{References: []model.Reference{{URL: "u", ExactQuote: ""}}})
	if pass {
		t.Error("expected attribution to fail when no reference carries an exact quote")
	}

	pass, _, _, _, _ = judgeAttribution(model.AnswerAction{References: []model.Reference{{URL: "u", ExactQuote: "the quote"}}})
	if !pass {
		t.Error("expected attribution to pass when a reference carries an exact quote")
	}
}

func TestComputeObligationsAlwaysIncludesStrictAndDefinitive(t *testing.T) {
	llm := &scriptedLLM{payloads: []string{
		`{"needs_freshness":false,"needs_plurality":false,"needs_completeness":false,"needs_attribution":false}`,
	}}
	e := New(llm)
	obligations, _, err := e.ComputeObligations(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("ComputeObligations: %v", err)
	}

	var hasDefinitive, hasStrict bool
	for _, ob := range obligations {
		if ob.Criterion == model.CriterionDefinitive {
			hasDefinitive = true
		}
		if ob.Criterion == model.CriterionStrict {
			hasStrict = true
		}
	}
	if !hasDefinitive || !hasStrict {
		t.Errorf("obligations = %+v, want DEFINITIVE and STRICT always present", obligations)
	}
	if obligations[len(obligations)-1].Criterion != model.CriterionStrict {
		t.Error("expected STRICT to run last")
	}
}

func TestComputeObligationsIncludesFreshnessWithMappedMaxAge(t *testing.T) {
	llm := &scriptedLLM{payloads: []string{
		`{"needs_freshness":true,"freshness_category":"stock-news","needs_plurality":false,"needs_completeness":false,"needs_attribution":false}`,
	}}
	e := New(llm)
	obligations, _, err := e.ComputeObligations(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("ComputeObligations: %v", err)
	}
	if !HasFreshnessObligation(obligations) {
		t.Fatal("expected FRESHNESS obligation to be present")
	}
	for _, ob := range obligations {
		if ob.Criterion == model.CriterionFreshness && ob.MaxAgeDays != 1 {
			t.Errorf("MaxAgeDays = %v, want 1 (stock-news)", ob.MaxAgeDays)
		}
	}
}

func TestComputeObligationsPluralityDefaultsRequiredCount(t *testing.T) {
	llm := &scriptedLLM{payloads: []string{
		`{"needs_freshness":false,"needs_plurality":true,"required_count":0,"needs_completeness":false,"needs_attribution":false}`,
	}}
	e := New(llm)
	obligations, _, err := e.ComputeObligations(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("ComputeObligations: %v", err)
	}
	for _, ob := range obligations {
		if ob.Criterion == model.CriterionPlurality && ob.RequiredCount != 2 {
			t.Errorf("RequiredCount = %d, want default 2", ob.RequiredCount)
		}
	}
}

func TestApplyVerdictPassedOriginalTerminates(t *testing.T) {
	e := New(&scriptedLLM{})
	outcome, _, err := e.ApplyVerdict(context.Background(), "q", true, model.AnswerAction{}, nil, Verdict{Passed: true})
	if err != nil {
		t.Fatalf("ApplyVerdict: %v", err)
	}
	if !outcome.Terminate {
		t.Error("expected Terminate=true for a passed original-question answer")
	}
}

func TestApplyVerdictPassedSubQuestionResolvesGap(t *testing.T) {
	e := New(&scriptedLLM{})
	outcome, _, err := e.ApplyVerdict(context.Background(), "sub-q", false, model.AnswerAction{}, nil, Verdict{Passed: true})
	if err != nil {
		t.Fatalf("ApplyVerdict: %v", err)
	}
	if outcome.ResolvedGap != "sub-q" {
		t.Errorf("ResolvedGap = %q, want %q", outcome.ResolvedGap, "sub-q")
	}
}

func TestApplyVerdictFailedDecrementsMatchingCriterionOnly(t *testing.T) {
	llm := &scriptedLLM{payloads: []string{
		`{"recap":"r","blame":"b","improvement":"i"}`,
	}}
	e := New(llm)
	obligations := []model.Obligation{
		{Criterion: model.CriterionDefinitive, RemainingAttempts: 2},
		{Criterion: model.CriterionStrict, RemainingAttempts: 2},
	}
	verdict := Verdict{FailedCriterion: model.CriterionDefinitive, Reasoning: "hedged"}

	outcome, _, err := e.ApplyVerdict(context.Background(), "q", true, model.AnswerAction{Text: "a"}, obligations, verdict)
	if err != nil {
		t.Fatalf("ApplyVerdict: %v", err)
	}
	if !outcome.DisableAnswer {
		t.Error("expected DisableAnswer on failure")
	}
	if outcome.FailureQAItem == nil || outcome.FailureQAItem.Kind != model.KindQA {
		t.Fatalf("FailureQAItem = %+v", outcome.FailureQAItem)
	}
	for _, ob := range outcome.UpdatedObligations {
		if ob.Criterion == model.CriterionDefinitive && ob.RemainingAttempts != 1 {
			t.Errorf("DEFINITIVE RemainingAttempts = %d, want 1", ob.RemainingAttempts)
		}
		if ob.Criterion == model.CriterionStrict && ob.RemainingAttempts != 2 {
			t.Errorf("STRICT RemainingAttempts = %d, want unchanged 2", ob.RemainingAttempts)
		}
	}
}

func TestApplyVerdictStrictFailureRecordsImprovementPlan(t *testing.T) {
	llm := &scriptedLLM{payloads: []string{
		`{"recap":"r","blame":"b","improvement":"i"}`,
	}}
	e := New(llm)
	obligations := []model.Obligation{{Criterion: model.CriterionStrict, RemainingAttempts: 2}}
	verdict := Verdict{FailedCriterion: model.CriterionStrict, ImprovementPlan: "add more sources"}

	outcome, _, err := e.ApplyVerdict(context.Background(), "q", true, model.AnswerAction{Text: "a"}, obligations, verdict)
	if err != nil {
		t.Fatalf("ApplyVerdict: %v", err)
	}
	if outcome.ReviewerPlan != "add more sources" {
		t.Errorf("ReviewerPlan = %q, want %q", outcome.ReviewerPlan, "add more sources")
	}
}
