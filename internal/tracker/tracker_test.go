package tracker

import (
	"testing"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

func TestRecordAccumulatesPerToolAndTotal(t *testing.T) {
	tr := New(1000, nil)
	tr.Record("search", collaborators.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	tr.Record("search", collaborators.Usage{PromptTokens: 2, CompletionTokens: 3, TotalTokens: 5})
	tr.Record("llm", collaborators.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150})

	if got := tr.ByTool("search"); got.TotalTokens != 20 {
		t.Errorf("ByTool(search).TotalTokens = %d, want 20", got.TotalTokens)
	}
	if got := tr.Total(); got.TotalTokens != 170 {
		t.Errorf("Total().TotalTokens = %d, want 170", got.TotalTokens)
	}
}

func TestRecordInvokesOnUpdate(t *testing.T) {
	var calls []string
	tr := New(1000, func(tool string, usage collaborators.Usage) {
		calls = append(calls, tool)
	})
	tr.Record("search", collaborators.Usage{TotalTokens: 1})
	tr.Record("llm", collaborators.Usage{TotalTokens: 1})

	if len(calls) != 2 || calls[0] != "search" || calls[1] != "llm" {
		t.Errorf("onUpdate calls = %v", calls)
	}
}

func TestDefaultTotalBudgetAppliedWhenNonPositive(t *testing.T) {
	tr := New(0, nil)
	if tr.TotalBudget() != DefaultTotalBudget {
		t.Errorf("TotalBudget() = %v, want %v", tr.TotalBudget(), DefaultTotalBudget)
	}
	tr = New(-5, nil)
	if tr.TotalBudget() != DefaultTotalBudget {
		t.Errorf("TotalBudget() = %v, want %v", tr.TotalBudget(), DefaultTotalBudget)
	}
}

func TestRegularBudgetExhaustedAtEightyFivePercent(t *testing.T) {
	tr := New(1000, nil)
	tr.Record("x", collaborators.Usage{TotalTokens: 849})
	if tr.RegularBudgetExhausted() {
		t.Error("RegularBudgetExhausted() = true before 85%% threshold")
	}
	tr.Record("x", collaborators.Usage{TotalTokens: 1})
	if !tr.RegularBudgetExhausted() {
		t.Error("RegularBudgetExhausted() = false at 85%% threshold")
	}
	if tr.BudgetExhausted() {
		t.Error("BudgetExhausted() = true before full budget reached")
	}
}

func TestBudgetExhaustedAtFullBudget(t *testing.T) {
	tr := New(1000, nil)
	tr.Record("x", collaborators.Usage{TotalTokens: 1000})
	if !tr.BudgetExhausted() {
		t.Error("BudgetExhausted() = false at full budget")
	}
	if tr.Remaining() != 0 {
		t.Errorf("Remaining() = %v, want 0", tr.Remaining())
	}
}

func TestLogActionPreservesOrderAndCopiesGaps(t *testing.T) {
	tr := New(1000, nil)
	gaps := []string{"g1", "g2"}
	tr.LogAction(0, model.Action{Type: model.ActionSearch}, gaps)
	gaps[0] = "mutated"
	tr.LogAction(1, model.Action{Type: model.ActionVisit}, []string{"g3"})

	log := tr.Log()
	if len(log) != 2 {
		t.Fatalf("len(Log()) = %d, want 2", len(log))
	}
	if log[0].Gaps[0] != "g1" {
		t.Errorf("LogAction should copy gaps defensively, got %v", log[0].Gaps)
	}
	if log[1].Action.Type != model.ActionVisit {
		t.Errorf("log[1].Action.Type = %v, want %v", log[1].Action.Type, model.ActionVisit)
	}
}
