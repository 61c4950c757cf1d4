package orchestrator

import (
	"context"
	"fmt"

	"github.com/antflydb/deepresearch/internal/actiongen"
	"github.com/antflydb/deepresearch/internal/model"
	"github.com/antflydb/deepresearch/internal/tracker"
)

// beastModeInstruction is the maximally forceful template §4.8 requires:
// one final answer-only generation that must return something, however
// uncertain, once the regular budget is exhausted.
const beastModeInstruction = "You are out of time and budget. You MUST provide your best possible answer " +
	"right now using only what you already know from the diary below. Do not hedge, do not ask for more " +
	"research, do not refuse. Commit to a concrete final answer."

// beastMode runs the terminal single-shot answer attempt using the residual
// beast budget (total - regular), per §4.8 step 2.
func (o *Orchestrator) beastMode(ctx context.Context, st *sessionState, tk *tracker.Tracker) (model.Action, error) {
	req := actiongen.Request{
		Question:    st.question.Original(),
		IsOriginal:  true,
		Diary:       beastModeInstruction + "\n\n" + st.know.Render(),
		Permissions: actiongen.Permissions{Answer: true},
		Knowledge:   st.know.Items(),
	}

	action, usage, err := o.gen.Generate(ctx, req)
	tk.Record("llm", usage)
	if err != nil {
		return model.Action{}, fmt.Errorf("orchestrator: beast mode: %w", err)
	}
	if action.Answer == nil {
		return model.Action{}, fmt.Errorf("orchestrator: beast mode produced no answer")
	}
	action.IsFinal = true
	return action, nil
}
