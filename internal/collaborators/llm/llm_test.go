package llm

import (
	"strings"
	"testing"

	"github.com/antflydb/deepresearch/internal/collaborators"
)

func TestStripDescriptionsRemovesNestedDescriptionKeys(t *testing.T) {
	raw := map[string]any{
		"type":        "object",
		"description": "top level",
		"properties": map[string]any{
			"foo": map[string]any{
				"type":        "string",
				"description": "a foo field",
			},
		},
		"items": []any{
			map[string]any{"type": "string", "description": "item desc"},
		},
	}
	out := stripDescriptions(raw)
	if _, ok := out["description"]; ok {
		t.Error("top-level description was not stripped")
	}
	props := out["properties"].(map[string]any)
	foo := props["foo"].(map[string]any)
	if _, ok := foo["description"]; ok {
		t.Error("nested description was not stripped")
	}
	if foo["type"] != "string" {
		t.Errorf("foo type = %v, want string (non-description keys preserved)", foo["type"])
	}
	items := out["items"].([]any)
	item0 := items[0].(map[string]any)
	if _, ok := item0["description"]; ok {
		t.Error("description inside array item was not stripped")
	}
}

func TestSchemaForPromptReturnsRawWhenNotStripped(t *testing.T) {
	raw := map[string]any{"description": "x"}
	schema := collaborators.Schema{Raw: raw}
	out := schemaForPrompt(schema)
	if _, ok := out["description"]; !ok {
		t.Error("expected raw schema unmodified when DescriptionsStripped is false")
	}
}

func TestSchemaForPromptStripsWhenRequested(t *testing.T) {
	raw := map[string]any{"description": "x", "type": "object"}
	schema := collaborators.Schema{Raw: raw, DescriptionsStripped: true}
	out := schemaForPrompt(schema)
	if _, ok := out["description"]; ok {
		t.Error("expected description stripped when DescriptionsStripped is true")
	}
}

func TestParseIntoStripsMarkdownFences(t *testing.T) {
	var dst struct {
		Foo string `json:"foo"`
	}
	err := parseInto("```json\n{\"foo\":\"bar\"}\n```", &dst)
	if err != nil {
		t.Fatalf("parseInto: %v", err)
	}
	if dst.Foo != "bar" {
		t.Errorf("Foo = %q, want bar", dst.Foo)
	}
}

func TestParseIntoRejectsEmptyResponse(t *testing.T) {
	var dst struct{}
	if err := parseInto("   ", &dst); err == nil {
		t.Error("expected an error for an empty response")
	}
}

func TestCombineUsageSumsFields(t *testing.T) {
	a := collaborators.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}
	b := collaborators.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30}
	got := combineUsage(a, b)
	want := collaborators.Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33}
	if got != want {
		t.Errorf("combineUsage = %+v, want %+v", got, want)
	}
}

func TestRenderPromptIncludesSystemMessagesAndSchema(t *testing.T) {
	schema := collaborators.Schema{Raw: map[string]any{"type": "object"}}
	messages := []collaborators.Message{{Role: "user", Text: "hello"}}
	prompt := renderPrompt("be helpful", messages, schema)
	if !strings.Contains(prompt, "be helpful") {
		t.Error("expected system prompt to be included")
	}
	if !strings.Contains(prompt, "<user>\nhello\n</user>") {
		t.Error("expected message to be rendered in a role-tagged block")
	}
	if !strings.Contains(prompt, `"type": "object"`) {
		t.Error("expected schema JSON to be included")
	}
}
