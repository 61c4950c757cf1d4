package orchestrator

import (
	"github.com/antflydb/deepresearch/internal/actiongen"
	"github.com/antflydb/deepresearch/internal/evaluator"
	"github.com/antflydb/deepresearch/internal/executors"
)

// computePermissions derives the per-step action gates (§4.6 "Action
// gating"). Steps 1-4 follow a fixed warm-up sequence
// (search -> visit -> answer -> reflect) that overrides state-derived
// gating (§9 "treat it as normative"); from step 5 onward, gating derives
// purely from session state. On the original question, a FRESHNESS
// obligation forces step 1 to forbid answer and reflect so the agent must
// search first; conversely, when no FRESHNESS obligation applies and
// direct answers are allowed, step 1 also permits answer so a trivial
// question can terminate immediately (§8 Scenario S1).
func computePermissions(step int, st *sessionState) actiongen.Permissions {
	if step <= 4 {
		perms := warmupPermissions(step)
		if step == 1 {
			if isOriginalFreshnessForced(st) {
				perms.Answer = false
				perms.Reflect = false
			} else if !evaluator.HasFreshnessObligation(st.obligations) && !st.noDirectAnswer {
				perms.Answer = true
			}
		}
		return perms
	}

	known := st.urls.Known()
	return actiongen.Permissions{
		Search:  known < executors.MaxKnownURLs,
		Visit:   len(st.lastShortList) > 0,
		Answer:  true,
		Reflect: len(st.question.Gaps()) <= executors.MaxReflectPerStep,
		Code:    true,
	}
}

func warmupPermissions(step int) actiongen.Permissions {
	switch step {
	case 1:
		return actiongen.Permissions{Search: true}
	case 2:
		return actiongen.Permissions{Visit: true}
	case 3:
		return actiongen.Permissions{Answer: true}
	case 4:
		return actiongen.Permissions{Reflect: true}
	default:
		return actiongen.Permissions{}
	}
}

func isOriginalFreshnessForced(st *sessionState) bool {
	if st.obligations == nil {
		return false
	}
	current := st.question.Select(1)
	if current != st.question.Original() {
		return false
	}
	return evaluator.HasFreshnessObligation(st.obligations)
}
