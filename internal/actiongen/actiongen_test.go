package actiongen

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

func TestBuildSchemaOnlyIncludesPermittedActions(t *testing.T) {
	schema := BuildSchema(Permissions{Search: true, Answer: true})
	props := schema.Raw["properties"].(map[string]any)

	if _, ok := props["search"]; !ok {
		t.Error("expected search field in schema")
	}
	if _, ok := props["answer"]; !ok {
		t.Error("expected answer field in schema")
	}
	if _, ok := props["visit"]; ok {
		t.Error("visit field should be absent when not permitted")
	}
	if _, ok := props["reflect"]; ok {
		t.Error("reflect field should be absent when not permitted")
	}
	if _, ok := props["code"]; ok {
		t.Error("code field should be absent when not permitted")
	}

	actionField := props["action"].(map[string]any)
	enum := actionField["enum"].([]any)
	if len(enum) != 2 {
		t.Errorf("action enum = %v, want 2 entries", enum)
	}
}

func TestPermissionsAny(t *testing.T) {
	if (Permissions{}).Any() {
		t.Error("Any() = true for zero-value Permissions")
	}
	if !(Permissions{Code: true}).Any() {
		t.Error("Any() = false with Code permitted")
	}
}

func TestRawActionToActionRejectsUnpermittedType(t *testing.T) {
	raw := rawAction{Action: "visit", Visit: &struct {
		Indices []int `json:"indices"`
	}{Indices: []int{0}}}

	_, err := raw.toAction(Permissions{Search: true})
	if err == nil {
		t.Error("expected error when action type is not permitted")
	}
}

func TestRawActionToActionRejectsMissingPayload(t *testing.T) {
	raw := rawAction{Action: "search"}
	_, err := raw.toAction(Permissions{Search: true})
	if err == nil {
		t.Error("expected error when permitted action's payload is nil")
	}
}

func TestRawActionToActionBuildsSearchAction(t *testing.T) {
	raw := rawAction{Action: "search"}
	raw.Search = &struct {
		Queries       []string `json:"queries"`
		OnlyHostnames []string `json:"only_hostnames"`
	}{Queries: []string{"q1", "q2"}, OnlyHostnames: []string{"example.org"}}

	action, err := raw.toAction(Permissions{Search: true})
	if err != nil {
		t.Fatalf("toAction: %v", err)
	}
	if action.Type != model.ActionSearch {
		t.Errorf("Type = %v, want %v", action.Type, model.ActionSearch)
	}
	if action.Search == nil || len(action.Search.Queries) != 2 {
		t.Fatalf("Search = %+v", action.Search)
	}
}

func TestRawActionToActionUnknownType(t *testing.T) {
	raw := rawAction{Action: "bogus"}
	_, err := raw.toAction(Permissions{Search: true, Visit: true, Answer: true, Reflect: true, Code: true})
	if err == nil {
		t.Error("expected error for unknown action type")
	}
}

// fakeLLM returns a pre-canned raw JSON payload decoded into dst, simulating
// the llm collaborator's parse-fallback cascade resolving to a concrete
// object (§4.5).
type fakeLLM struct {
	payload string
	usage   collaborators.Usage
	err     error
}

func (f *fakeLLM) GenerateObject(ctx context.Context, schema collaborators.Schema, systemPrompt string, messages []collaborators.Message, dst any) (collaborators.Usage, error) {
	if f.err != nil {
		return collaborators.Usage{}, f.err
	}
	return f.usage, json.Unmarshal([]byte(f.payload), dst)
}

func TestGenerateProducesAction(t *testing.T) {
	llm := &fakeLLM{
		payload: `{"think":"need to search","action":"search","search":{"queries":["go concurrency"]}}`,
		usage:   collaborators.Usage{TotalTokens: 42},
	}
	gen := New(llm)

	action, usage, err := gen.Generate(context.Background(), Request{
		Question:    "what is go",
		Permissions: Permissions{Search: true},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if action.Type != model.ActionSearch {
		t.Errorf("Type = %v, want search", action.Type)
	}
	if usage.TotalTokens != 42 {
		t.Errorf("usage.TotalTokens = %d, want 42", usage.TotalTokens)
	}
}

func TestGenerateRejectsWhenNoPermissionsGranted(t *testing.T) {
	gen := New(&fakeLLM{})
	_, _, err := gen.Generate(context.Background(), Request{Question: "q", Permissions: Permissions{}})
	if err == nil {
		t.Error("expected error when no actions are permitted")
	}
}
