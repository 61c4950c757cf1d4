package actiongen

import (
	"fmt"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
)

// BuildSchema constructs the per-step JSON schema offered to the LLM: a
// discriminator `action` enum restricted to the currently-permitted set,
// plus one optional object field per permitted action carrying its required
// sub-fields (§4.5). Field descriptions embed the live constants
// (MaxQueriesPerStep, MaxURLsPerStep) the way the original's JsonSchemaGen
// injected live limits into per-field descriptions, not just maxItems.
func BuildSchema(perms Permissions) collaborators.Schema {
	actionEnum := []any{}
	properties := map[string]any{
		"think": map[string]any{
			"type":        "string",
			"description": "Step-by-step reasoning before committing to an action.",
		},
	}
	required := []any{"think", "action"}

	if perms.Search {
		actionEnum = append(actionEnum, "search")
		properties["search"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"queries": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"maxItems":    MaxQueriesPerStep,
					"description": fmt.Sprintf("Up to %d search queries.", MaxQueriesPerStep),
				},
				"only_hostnames": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Optional: restrict results to these hostnames via site: syntax.",
				},
			},
			"required": []any{"queries"},
		}
	}

	if perms.Visit {
		actionEnum = append(actionEnum, "visit")
		properties["visit"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"indices": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "integer"},
					"maxItems":    MaxURLsPerStep,
					"description": fmt.Sprintf("Up to %d indices from the ranked URL list above.", MaxURLsPerStep),
				},
			},
			"required": []any{"indices"},
		}
	}

	if perms.Answer {
		actionEnum = append(actionEnum, "answer")
		properties["answer"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "The final answer text.",
				},
				"references": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"exact_quote": map[string]any{"type": "string"},
							"url":         map[string]any{"type": "string"},
							"title":       map[string]any{"type": "string"},
							"datetime":    map[string]any{"type": "string"},
						},
						"required": []any{"exact_quote", "url"},
					},
				},
			},
			"required": []any{"text"},
		}
	}

	if perms.Reflect {
		actionEnum = append(actionEnum, "reflect")
		properties["reflect"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sub_questions": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"maxItems":    MaxQueriesPerStep,
					"description": fmt.Sprintf("Up to %d new sub-questions that must be answered first.", MaxQueriesPerStep),
				},
			},
			"required": []any{"sub_questions"},
		}
	}

	if perms.Code {
		actionEnum = append(actionEnum, "code")
		properties["code"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"issue": map[string]any{
					"type":        "string",
					"description": "The computational problem to hand to the code sandbox.",
				},
			},
			"required": []any{"issue"},
		}
	}

	properties["action"] = map[string]any{
		"type": "string",
		"enum": actionEnum,
	}
	required = append(required, "action")

	raw := map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
	return collaborators.Schema{Raw: raw}
}

// rawAction is the wire shape the LLM emits: a discriminator plus only the
// permitted sub-object. Decoded with encoding/json's default zero-value
// semantics: unpopulated sub-objects stay nil.
type rawAction struct {
	Think  string `json:"think"`
	Action string `json:"action"`

	Search *struct {
		Queries       []string `json:"queries"`
		OnlyHostnames []string `json:"only_hostnames"`
	} `json:"search"`

	Visit *struct {
		Indices []int `json:"indices"`
	} `json:"visit"`

	Answer *struct {
		Text       string `json:"text"`
		References []struct {
			ExactQuote string `json:"exact_quote"`
			URL        string `json:"url"`
			Title      string `json:"title"`
			DateTime   string `json:"datetime"`
		} `json:"references"`
	} `json:"answer"`

	Reflect *struct {
		SubQuestions []string `json:"sub_questions"`
	} `json:"reflect"`

	Code *struct {
		Issue string `json:"issue"`
	} `json:"code"`
}

func (r rawAction) toAction(perms Permissions) (model.Action, error) {
	action := model.Action{Type: model.ActionType(r.Action), Think: r.Think}

	switch action.Type {
	case model.ActionSearch:
		if !perms.Search || r.Search == nil {
			return model.Action{}, fmt.Errorf("search action not permitted or missing payload")
		}
		action.Search = &model.SearchAction{Queries: r.Search.Queries, OnlyHostnames: r.Search.OnlyHostnames}
	case model.ActionVisit:
		if !perms.Visit || r.Visit == nil {
			return model.Action{}, fmt.Errorf("visit action not permitted or missing payload")
		}
		action.Visit = &model.VisitAction{Indices: r.Visit.Indices}
	case model.ActionAnswer:
		if !perms.Answer || r.Answer == nil {
			return model.Action{}, fmt.Errorf("answer action not permitted or missing payload")
		}
		refs := make([]model.Reference, 0, len(r.Answer.References))
		for _, ref := range r.Answer.References {
			refs = append(refs, model.Reference{
				ExactQuote: ref.ExactQuote,
				URL:        ref.URL,
				Title:      ref.Title,
				DateTime:   ref.DateTime,
			})
		}
		action.Answer = &model.AnswerAction{Text: r.Answer.Text, References: refs}
	case model.ActionReflect:
		if !perms.Reflect || r.Reflect == nil {
			return model.Action{}, fmt.Errorf("reflect action not permitted or missing payload")
		}
		action.Reflect = &model.ReflectAction{SubQuestions: r.Reflect.SubQuestions}
	case model.ActionCode:
		if !perms.Code || r.Code == nil {
			return model.Action{}, fmt.Errorf("code action not permitted or missing payload")
		}
		action.Code = &model.CodeAction{Issue: r.Code.Issue}
	default:
		return model.Action{}, fmt.Errorf("unknown or unpermitted action type %q", r.Action)
	}

	return action, nil
}
