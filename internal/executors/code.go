package executors

import (
	"context"
	"fmt"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

// Code executes the code action: delegates to the sandbox collaborator with
// a read-only session snapshot (diary, top ledger URLs, accumulated
// knowledge), then appends a coding KnowledgeItem (§4.6).
func Code(ctx context.Context, s *Session, diary string, action model.CodeAction) (model.KnowledgeItem, Gates, error) {
	gates := Gates{}

	if s.Collab.Sandbox == nil {
		return model.KnowledgeItem{}, gates, fmt.Errorf("code: no sandbox collaborator configured")
	}

	topURLs := topKnownURLs(s, 10)
	sandboxCtx := collaborators.CodeSandboxContext{
		Diary:     diary,
		TopURLs:   topURLs,
		Knowledge: renderKnowledgeSummary(s),
	}

	result, err := s.Collab.Sandbox.Solve(ctx, action.Issue, sandboxCtx)
	if err != nil {
		return model.KnowledgeItem{}, gates, fmt.Errorf("code: solve: %w", err)
	}

	item := model.KnowledgeItem{
		Kind:     model.KindCoding,
		Question: action.Issue,
		Answer:   result.Output,
		Code:     result.Code,
	}
	return item, gates, nil
}

func topKnownURLs(s *Session, n int) []string {
	keys := s.URLs.AllKeys()
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func renderKnowledgeSummary(s *Session) string {
	var out string
	for _, item := range s.Knowledge.Items() {
		out += string(item.Kind) + ": " + item.Question + "\n"
	}
	return out
}
