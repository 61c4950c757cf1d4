// Package sandbox implements collaborators.CodeSandbox by routing the issue
// through an LLM collaborator as text reasoning. No example repo in the
// retrieval pack ships a standalone code-execution backend (the teacher's
// own stack has none; a sandboxed interpreter belongs to a different pack
// member's domain entirely, not wired here — see DESIGN.md), so this adapter
// asks the model to reason through the computation and report its working
// as "code" without actually executing anything.
package sandbox

import (
	"context"
	"fmt"

	"github.com/antflydb/deepresearch/internal/collaborators"
)

// Adapter implements collaborators.CodeSandbox on top of an LLM collaborator.
type Adapter struct {
	llm collaborators.LLM
}

// New returns an Adapter backed by llm.
func New(llm collaborators.LLM) *Adapter {
	return &Adapter{llm: llm}
}

var solveSchema = collaborators.Schema{Raw: map[string]any{
	"type": "object",
	"properties": map[string]any{
		"reasoning": map[string]any{
			"type":        "string",
			"description": "Step-by-step derivation, written as if computing by hand.",
		},
		"output": map[string]any{
			"type":        "string",
			"description": "The final computed result.",
		},
	},
	"required": []any{"reasoning", "output"},
}}

type solveResponse struct {
	Reasoning string `json:"reasoning"`
	Output    string `json:"output"`
}

// Solve asks the LLM to work through issue given sessionCtx, returning the
// reasoning as the "code" field (no execution actually occurs).
func (a *Adapter) Solve(ctx context.Context, issue string, sessionCtx collaborators.CodeSandboxContext) (collaborators.CodeSandboxResult, error) {
	prompt := fmt.Sprintf(
		"Issue requiring computation: %s\n\nContext diary:\n%s\n\nKnown top URLs: %v\n\nKnowledge so far:\n%s\n\n"+
			"Work through this step by step and give a precise final result.",
		issue, sessionCtx.Diary, sessionCtx.TopURLs, sessionCtx.Knowledge,
	)

	var resp solveResponse
	_, err := a.llm.GenerateObject(ctx, solveSchema, prompt, nil, &resp)
	if err != nil {
		return collaborators.CodeSandboxResult{}, fmt.Errorf("sandbox: solve: %w", err)
	}

	return collaborators.CodeSandboxResult{Output: resp.Output, Code: resp.Reasoning}, nil
}
