// Package llm adapts genkit to the collaborators.LLM interface. Because the
// research loop's output schema changes every step (only the permitted
// action's sub-object is allowed, per §4.5), it cannot use genkit's
// compile-time ai.WithOutputType(struct{}) path the way the teacher's
// evaluator prompts do (evalaf/genkit/evaluators.go). Instead it follows the
// teacher's other documented genkit pattern: a raw genkit.Generate call
// followed by a manual JSON parse of response.Text() (evalaf/redteam/llm_judge.go),
// which tolerates an arbitrary, run-time-constructed schema.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/antflydb/deepresearch/internal/collaborators"
	ijson "github.com/antflydb/deepresearch/internal/json"
)

// Adapter implements collaborators.LLM on top of a genkit instance.
type Adapter struct {
	g     *genkit.Genkit
	model string
}

// New returns an Adapter that calls modelName through g.
func New(g *genkit.Genkit, modelName string) *Adapter {
	return &Adapter{g: g, model: modelName}
}

// GenerateObject renders messages and schema into a single prompt, invokes
// the model, and parses its response into dst. It retries once with a
// descriptions-stripped schema variant on parse failure (§4.5, §7), then
// gives up.
func (a *Adapter) GenerateObject(ctx context.Context, schema collaborators.Schema, systemPrompt string, messages []collaborators.Message, dst any) (collaborators.Usage, error) {
	prompt := renderPrompt(systemPrompt, messages, schema)

	resp, err := genkit.Generate(ctx, a.g,
		ai.WithModelName(a.model),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return collaborators.Usage{}, fmt.Errorf("llm: generate: %w", err)
	}

	usage := usageFrom(resp)

	if parseErr := parseInto(resp.Text(), dst); parseErr == nil {
		return usage, nil
	}

	// Retry once with a leaner, description-stripped schema and an explicit
	// nudge — the fallback path named in §4.5.
	strippedSchema := schema
	strippedSchema.DescriptionsStripped = true
	retryPrompt := renderPrompt(systemPrompt, messages, strippedSchema) +
		"\n\nYour previous response was not valid JSON matching the schema. Respond with JSON only, no prose, no markdown fences."

	resp, err = genkit.Generate(ctx, a.g,
		ai.WithModelName(a.model),
		ai.WithPrompt(retryPrompt),
	)
	if err != nil {
		return usage, fmt.Errorf("llm: retry generate: %w", err)
	}
	usage = combineUsage(usage, usageFrom(resp))

	if parseErr := parseInto(resp.Text(), dst); parseErr != nil {
		return usage, fmt.Errorf("llm: could not parse model response as %T after retry: %w", dst, parseErr)
	}
	return usage, nil
}

func renderPrompt(systemPrompt string, messages []collaborators.Message, schema collaborators.Schema) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "<%s>\n%s\n</%s>\n\n", m.Role, m.Text, m.Role)
	}
	b.WriteString("Respond with a single JSON object matching this schema:\n")
	schemaJSON, err := ijson.MarshalIndent(schemaForPrompt(schema), "", "  ")
	if err == nil {
		b.Write(schemaJSON)
	}
	return b.String()
}

// schemaForPrompt strips "description" keys recursively when requested, the
// leaner fallback variant used on retry (§4.5).
func schemaForPrompt(schema collaborators.Schema) map[string]any {
	if !schema.DescriptionsStripped {
		return schema.Raw
	}
	return stripDescriptions(schema.Raw)
}

func stripDescriptions(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		if k == "description" {
			continue
		}
		switch vv := v.(type) {
		case map[string]any:
			out[k] = stripDescriptions(vv)
		case []any:
			arr := make([]any, len(vv))
			for i, item := range vv {
				if m, ok := item.(map[string]any); ok {
					arr[i] = stripDescriptions(m)
				} else {
					arr[i] = item
				}
			}
			out[k] = arr
		default:
			out[k] = v
		}
	}
	return out
}

func parseInto(text string, dst any) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("llm: empty response")
	}
	return ijson.UnmarshalString(text, dst)
}

func usageFrom(resp *ai.ModelResponse) collaborators.Usage {
	if resp == nil || resp.Usage == nil {
		return collaborators.Usage{}
	}
	return collaborators.Usage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
}

func combineUsage(a, b collaborators.Usage) collaborators.Usage {
	return collaborators.Usage{
		PromptTokens:     a.PromptTokens + b.PromptTokens,
		CompletionTokens: a.CompletionTokens + b.CompletionTokens,
		TotalTokens:      a.TotalTokens + b.TotalTokens,
	}
}
