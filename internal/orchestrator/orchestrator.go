// Package orchestrator implements the main research loop (C8): the
// sequential step cycle, action gating, beast mode, and the single exported
// Research operation, per spec §4.8 and §6.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/antflydb/deepresearch/internal/actiongen"
	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/evaluator"
	"github.com/antflydb/deepresearch/internal/executors"
	"github.com/antflydb/deepresearch/internal/knowledge"
	"github.com/antflydb/deepresearch/internal/model"
	"github.com/antflydb/deepresearch/internal/questions"
	"github.com/antflydb/deepresearch/internal/tracker"
	"github.com/antflydb/deepresearch/internal/urlledger"
)

// StepSleep is the fixed politeness delay between steps (§4.8, §5).
var StepSleep = 500 * time.Millisecond

// ShortListSize is K, the number of hostname-diversified candidates
// presented to the generator each step (§4.1 Short-list).
const ShortListSize = 20

// Options configures a Research call (§6).
type Options struct {
	TokenBudget      float64
	MaxBadAttempts   int
	NoDirectAnswer   bool
	BoostHostnames   []string
	BadHostnames     []string
	OnlyHostnames    []string
	RankCoefficients urlledger.Coefficients
	DebugSink        DebugSink

	// RateLimitPerMinute throttles outbound search/fetch calls (§5
	// politeness); 0 disables throttling.
	RateLimitPerMinute int
}

// DebugSink optionally records each step's question and chosen action
// (§6 "Persisted state: None required; an optional debug sink").
type DebugSink interface {
	RecordStep(step int, question string, action model.Action)
}

// Result is the Research operation's return value (§6).
type Result struct {
	FinalAnswer string
	References  []model.Reference
	VisitedURLs []string
	ReadURLs    []string
	AllURLs     []string
	Usage       collaborators.Usage
}

// Orchestrator runs research sessions against a fixed set of collaborators.
type Orchestrator struct {
	collab collaborators.LLM
	execs  executors.Collaborators
	gen    *actiongen.Generator
	eval   *evaluator.Evaluator
}

// New builds an Orchestrator from the given collaborator set.
func New(execs executors.Collaborators) *Orchestrator {
	return &Orchestrator{
		collab: execs.LLM,
		execs:  execs,
		gen:    actiongen.New(execs.LLM),
		eval:   evaluator.New(execs.LLM),
	}
}

// sessionState is the mutable per-session data §9 requires be carried
// explicitly through the loop rather than held as package-level globals.
type sessionState struct {
	question    *questions.Tracker
	urls        *urlledger.Ledger
	know        *knowledge.Store
	tracker     *tracker.Tracker
	usedQueries *executors.UsedQueries

	obligations       []model.Obligation
	reviewerPlans     []string
	lastShortList     []urlledger.Candidate
	noDirectAnswer    bool
}

// Research runs one research session to completion and returns the final
// answer (§4.8, §6).
func (o *Orchestrator) Research(ctx context.Context, question string, opts Options) (Result, error) {
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = tracker.DefaultTotalBudget
	}
	if opts.MaxBadAttempts <= 0 {
		opts.MaxBadAttempts = evaluator.DefaultMaxBadAttempts
	}
	coeffs := opts.RankCoefficients
	if coeffs == (urlledger.Coefficients{}) {
		coeffs = urlledger.DefaultCoefficients()
	}

	boosted := toSet(opts.BoostHostnames)

	tk := tracker.New(opts.TokenBudget, nil)
	st := &sessionState{
		question:       questions.New(ctx, question, o.execs.Embed, questions.DefaultSimilarityThreshold),
		urls:           urlledger.New(coeffs, o.execs.Rerank),
		know:           knowledge.New(),
		tracker:        tk,
		usedQueries:    executors.NewUsedQueries(),
		noDirectAnswer: opts.NoDirectAnswer,
	}

	sess := &executors.Session{
		URLs:            st.urls,
		Knowledge:       st.know,
		Questions:       st.question,
		Tracker:         tk,
		Collab:          o.execs,
		NoDirectAnswer:  opts.NoDirectAnswer,
		OutboundLimiter: executors.NewOutboundLimiter(opts.RateLimitPerMinute),
	}

	step := 0
	var finalAction *model.Action

	for !tk.RegularBudgetExhausted() {
		step++
		current := st.question.Select(step)
		isOriginal := current == st.question.Original()

		if isOriginal && st.obligations == nil {
			obligations, usage, err := o.eval.ComputeObligations(ctx, current, opts.MaxBadAttempts)
			if err == nil {
				st.obligations = obligations
			}
			tk.Record("llm", usage)
		}

		st.lastShortList = st.urls.Rank(ctx, urlledger.RankOptions{
			Question:         current,
			BoostedHostnames: boosted,
			DiversifyPerHost: 2,
		})
		if len(st.lastShortList) > ShortListSize {
			st.lastShortList = st.lastShortList[:ShortListSize]
		}

		perms := computePermissions(step, st)

		req := actiongen.Request{
			Question:          current,
			IsOriginal:        isOriginal,
			Diary:             st.know.Render(),
			ShortList:         toShortListEntries(st.lastShortList),
			UsedSearchQueries: st.usedQueries.All(),
			Permissions:       perms,
			ReviewerPlans:     st.reviewerPlans,
			Knowledge:         st.know.Items(),
		}

		action, usage, err := o.gen.Generate(ctx, req)
		tk.Record("llm", usage)
		if opts.DebugSink != nil {
			opts.DebugSink.RecordStep(step, current, action)
		}
		if err != nil {
			// §7: schema-parse exhaustion aborts the step, not the session.
			time.Sleep(StepSleep)
			continue
		}

		terminate := o.executeAndEvaluate(ctx, sess, st, step, current, isOriginal, action, &finalAction)
		tk.LogAction(step, action, st.question.Gaps())

		if terminate {
			break
		}

		time.Sleep(StepSleep)
	}

	if finalAction == nil {
		action, err := o.beastMode(ctx, st, tk)
		if err == nil {
			finalAction = &action
		} else {
			empty := model.Action{Type: model.ActionAnswer, Answer: &model.AnswerAction{Text: ""}, IsFinal: true}
			finalAction = &empty
		}
	}

	return buildResult(st, finalAction, tk), nil
}

// executeAndEvaluate runs one step's chosen action through C6, and for
// answer actions through C7, applying all post-evaluation bookkeeping
// in-place on st. Returns true if the session should terminate.
func (o *Orchestrator) executeAndEvaluate(ctx context.Context, sess *executors.Session, st *sessionState, step int, current string, isOriginal bool, action model.Action, finalAction **model.Action) bool {
	switch action.Type {
	case model.ActionSearch:
		_, items, _, err := executors.Search(ctx, sess, st.usedQueries, *action.Search, o.rewriteQueriesFn(ctx, current))
		if err == nil {
			for _, item := range items {
				st.know.Append(item)
			}
		}
		return false

	case model.ActionVisit:
		items, _, err := executors.Visit(ctx, sess, st.lastShortList, *action.Visit)
		if err == nil {
			for _, item := range items {
				st.know.Append(item)
			}
		}
		return false

	case model.ActionReflect:
		_, _, err := executors.Reflect(ctx, sess, *action.Reflect)
		_ = err
		return false

	case model.ActionCode:
		item, _, err := executors.Code(ctx, sess, st.know.Render(), *action.Code)
		if err == nil {
			st.know.Append(item)
		}
		return false

	case model.ActionAnswer:
		result := executors.Answer(ctx, sess, step, *action.Answer)
		if result.IsTrivial {
			*finalAction = &result.Action
			return true
		}

		obligations := st.obligations
		if !isOriginal {
			obligations = nil
		}
		verdict, usage, _ := o.eval.Evaluate(ctx, current, *result.Action.Answer, obligations)
		sess.Tracker.Record("llm", usage)

		outcome, usage2, _ := o.eval.ApplyVerdict(ctx, current, isOriginal, *result.Action.Answer, obligations, verdict)
		sess.Tracker.Record("llm", usage2)

		if outcome.UpdatedObligations != nil && isOriginal {
			st.obligations = outcome.UpdatedObligations
		}
		if outcome.ReviewerPlan != "" {
			st.reviewerPlans = append(st.reviewerPlans, outcome.ReviewerPlan)
		}
		if outcome.FailureQAItem != nil {
			st.know.Append(*outcome.FailureQAItem)
		}
		if outcome.ResolvedGap != "" {
			st.question.ResolveGap(outcome.ResolvedGap)
			st.know.Append(model.KnowledgeItem{
				Kind:     model.KindQA,
				Question: current,
				Answer:   result.Action.Answer.Text,
			})
		}
		if outcome.Terminate {
			result.Action.IsFinal = true
			*finalAction = &result.Action
			return true
		}
		return false

	default:
		return false
	}
}

// rewriteQueriesFn builds the second-pass query rewrite callback used by
// executors.Search, backed by the LLM collaborator (§4.6).
func (o *Orchestrator) rewriteQueriesFn(ctx context.Context, question string) func(context.Context, string) ([]string, error) {
	return func(ctx context.Context, digest string) ([]string, error) {
		schema := collaborators.Schema{Raw: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"queries": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"maxItems": actiongen.MaxQueriesPerStep,
				},
			},
			"required": []any{"queries"},
		}}
		prompt := fmt.Sprintf(
			"Question: %s\nFirst-pass search digest: %s\n\nPropose refined search queries to fill remaining gaps.",
			question, digest,
		)
		var resp struct {
			Queries []string `json:"queries"`
		}
		_, err := o.collab.GenerateObject(ctx, schema, prompt, nil, &resp)
		if err != nil {
			return nil, err
		}
		return resp.Queries, nil
	}
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}

func toShortListEntries(candidates []urlledger.Candidate) []actiongen.ShortListEntry {
	out := make([]actiongen.ShortListEntry, len(candidates))
	for i, c := range candidates {
		out[i] = actiongen.ShortListEntry{
			Index:   i,
			Score:   c.FinalScore,
			Title:   c.Title,
			Snippet: c.Description,
		}
	}
	return out
}

func buildResult(st *sessionState, finalAction *model.Action, tk *tracker.Tracker) Result {
	res := Result{
		VisitedURLs: st.urls.VisitedKeys(),
		ReadURLs:    st.urls.ReadKeys(),
		AllURLs:     st.urls.AllKeys(),
		Usage:       tk.Total(),
	}
	if finalAction != nil && finalAction.Answer != nil {
		res.FinalAnswer = finalAction.Answer.Text
		res.References = finalAction.Answer.References
	}
	return res
}
