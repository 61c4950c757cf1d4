// Package actiongen implements the action generator (C5): prompt assembly,
// per-step JSON schema construction, and the LLM invocation that produces
// one tagged Action per research step, per spec §4.5.
package actiongen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

// MaxQueriesPerStep bounds both search queries and reflect sub-questions
// offered in a single step (§5 backpressure).
const MaxQueriesPerStep = 4

// MaxURLsPerStep bounds visit targets offered in a single step (§5).
const MaxURLsPerStep = 4

// Permissions are the per-step action gates computed by the orchestrator
// (§4.6 "Action gating").
type Permissions struct {
	Search  bool
	Visit   bool
	Answer  bool
	Reflect bool
	Code    bool
}

// Any reports whether at least one action is currently permitted.
func (p Permissions) Any() bool {
	return p.Search || p.Visit || p.Answer || p.Reflect || p.Code
}

// ShortListEntry is one ranked URL candidate offered to the model for visit
// (§4.1 Short-list, §4.5).
type ShortListEntry struct {
	Index   int
	Score   float64
	Title   string
	Snippet string
}

// Request bundles everything the generator needs to build one step's prompt.
type Request struct {
	Question          string
	IsOriginal        bool
	Diary             string
	ShortList         []ShortListEntry
	UsedSearchQueries []string
	Permissions       Permissions
	// ReviewerPlans are prior STRICT-failure improvement plans, surfaced only
	// when Question is the original question (§4.5, §4.7).
	ReviewerPlans []string
	Knowledge     []model.KnowledgeItem
}

// Generator builds prompts and schemas and invokes the LLM collaborator.
type Generator struct {
	llm   collaborators.LLM
	clock func() time.Time
}

// New returns a Generator backed by llm.
func New(llm collaborators.LLM) *Generator {
	return &Generator{llm: llm, clock: time.Now}
}

// Generate produces one Action for req, cascading through the parse-fallback
// policy implemented inside the llm collaborator (direct parse → lenient →
// description-stripped retry), per §4.5/§7.
func (g *Generator) Generate(ctx context.Context, req Request) (model.Action, collaborators.Usage, error) {
	if !req.Permissions.Any() {
		return model.Action{}, collaborators.Usage{}, fmt.Errorf("actiongen: no permitted actions for step")
	}

	schema := BuildSchema(req.Permissions)
	systemPrompt := buildHeader(g.clock()) + buildContext(req) + buildPermittedActions(req) + buildFooter()
	messages := buildMessages(req)

	var raw rawAction
	usage, err := g.llm.GenerateObject(ctx, schema, systemPrompt, messages, &raw)
	if err != nil {
		return model.Action{}, usage, fmt.Errorf("actiongen: generate: %w", err)
	}

	action, err := raw.toAction(req.Permissions)
	if err != nil {
		return model.Action{}, usage, fmt.Errorf("actiongen: %w", err)
	}
	return action, usage, nil
}

func buildHeader(now time.Time) string {
	return fmt.Sprintf("You are a deep research agent. Current date: %s.\n\n", now.Format("2006-01-02"))
}

func buildContext(req Request) string {
	var b strings.Builder
	b.WriteString("Research diary so far:\n")
	if req.Diary == "" {
		b.WriteString("(nothing yet)\n")
	} else {
		b.WriteString(req.Diary)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func buildPermittedActions(req Request) string {
	var b strings.Builder
	b.WriteString("Permitted actions this step:\n")
	p := req.Permissions

	if p.Search {
		b.WriteString("- search: issue one or more web search queries.\n")
		if len(req.UsedSearchQueries) > 0 {
			fmt.Fprintf(&b, "  Already used (do not repeat): %s\n", strings.Join(req.UsedSearchQueries, "; "))
		}
	}
	if p.Visit {
		b.WriteString("- visit: fetch one or more of these ranked URLs by index.\n")
		for _, e := range req.ShortList {
			fmt.Fprintf(&b, "  [%d] (score %.3f) %s — %s\n", e.Index, e.Score, e.Title, truncate(e.Snippet, 200))
		}
	}
	if p.Answer {
		b.WriteString("- answer: provide a final answer with supporting references.\n")
	}
	if p.Reflect {
		b.WriteString("- reflect: propose new sub-questions that need answering first.\n")
	}
	if p.Code {
		b.WriteString("- code: delegate a computational sub-problem to a code sandbox.\n")
	}
	b.WriteString("\n")
	return b.String()
}

func buildFooter() string {
	return "Think step by step in `think`, then choose exactly one action and fill in only its fields."
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// buildMessages renders the knowledge diary as alternating user/assistant
// turns, appends a reviewer "answer-requirements" block when applicable,
// then the current question (§4.5).
func buildMessages(req Request) []collaborators.Message {
	var messages []collaborators.Message
	for _, item := range req.Knowledge {
		if item.Question != "" {
			messages = append(messages, collaborators.Message{Role: collaborators.RoleUser, Text: item.Question})
		}
		if item.Answer != "" {
			messages = append(messages, collaborators.Message{Role: collaborators.RoleAssistant, Text: item.Answer})
		}
	}

	if req.IsOriginal && len(req.ReviewerPlans) > 0 {
		var b strings.Builder
		b.WriteString("<answer-requirements>\n")
		for _, plan := range req.ReviewerPlans {
			b.WriteString(plan)
			b.WriteString("\n")
		}
		b.WriteString("</answer-requirements>")
		messages = append(messages, collaborators.Message{Role: collaborators.RoleUser, Text: b.String()})
	}

	messages = append(messages, collaborators.Message{Role: collaborators.RoleUser, Text: req.Question})
	return messages
}
