// Package tracker implements the token budget tracker and action log (C4):
// per-tool token tallies, global accumulation, and the step-by-step action
// history consumed by the generator's diary rendering, per spec §3 and §4.4.
package tracker

import (
	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

// DefaultTotalBudget is the default total token budget for a session (§4.4).
const DefaultTotalBudget = 400000

// RegularBudgetFraction is the share of the total budget spent before the
// orchestrator switches to beast mode (§4.4, §4.8).
const RegularBudgetFraction = 0.85

// ActionLogEntry records one executed step for diary rendering and
// debugging: the step index, the action taken, and the gap set active when
// it was chosen (§4.4).
type ActionLogEntry struct {
	Step   int
	Action model.Action
	Gaps   []string
}

// Tracker accumulates token usage per collaborator tool and the full action
// log for a session.
type Tracker struct {
	totalBudget float64
	perTool     map[string]collaborators.Usage
	total       collaborators.Usage
	log         []ActionLogEntry
	onUpdate    func(tool string, usage collaborators.Usage)
}

// New creates a tracker with the given total token budget. If totalBudget is
// <= 0, DefaultTotalBudget is used. onUpdate, if non-nil, is invoked after
// every Record call (§4.4 "event emission on update").
func New(totalBudget float64, onUpdate func(tool string, usage collaborators.Usage)) *Tracker {
	if totalBudget <= 0 {
		totalBudget = DefaultTotalBudget
	}
	return &Tracker{
		totalBudget: totalBudget,
		perTool:     make(map[string]collaborators.Usage),
		onUpdate:    onUpdate,
	}
}

// Record adds usage to tool's running tally and the session total.
func (t *Tracker) Record(tool string, usage collaborators.Usage) {
	prior := t.perTool[tool]
	prior.PromptTokens += usage.PromptTokens
	prior.CompletionTokens += usage.CompletionTokens
	prior.TotalTokens += usage.TotalTokens
	t.perTool[tool] = prior

	t.total.PromptTokens += usage.PromptTokens
	t.total.CompletionTokens += usage.CompletionTokens
	t.total.TotalTokens += usage.TotalTokens

	if t.onUpdate != nil {
		t.onUpdate(tool, usage)
	}
}

// Total returns the session-wide accumulated usage.
func (t *Tracker) Total() collaborators.Usage {
	return t.total
}

// ByTool returns the accumulated usage for a single collaborator tool.
func (t *Tracker) ByTool(tool string) collaborators.Usage {
	return t.perTool[tool]
}

// TotalBudget returns the session's total token budget.
func (t *Tracker) TotalBudget() float64 {
	return t.totalBudget
}

// RegularBudget returns the portion of the total budget available before
// beast mode (§4.4, §4.8).
func (t *Tracker) RegularBudget() float64 {
	return t.totalBudget * RegularBudgetFraction
}

// RegularBudgetExhausted reports whether accumulated usage has reached the
// regular (pre-beast-mode) budget.
func (t *Tracker) RegularBudgetExhausted() bool {
	return float64(t.total.TotalTokens) >= t.RegularBudget()
}

// BudgetExhausted reports whether accumulated usage has reached the full
// session budget (used as the beast-mode hard stop).
func (t *Tracker) BudgetExhausted() bool {
	return float64(t.total.TotalTokens) >= t.totalBudget
}

// Remaining returns the number of tokens left in the total budget (can be
// negative if a single call overshoots).
func (t *Tracker) Remaining() float64 {
	return t.totalBudget - float64(t.total.TotalTokens)
}

// LogAction appends one executed step to the action log.
func (t *Tracker) LogAction(step int, action model.Action, gaps []string) {
	gapsCopy := make([]string, len(gaps))
	copy(gapsCopy, gaps)
	t.log = append(t.log, ActionLogEntry{Step: step, Action: action, Gaps: gapsCopy})
}

// Log returns the full action history in execution order.
func (t *Tracker) Log() []ActionLogEntry {
	out := make([]ActionLogEntry, len(t.log))
	copy(out, t.log)
	return out
}
