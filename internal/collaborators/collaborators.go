// Package collaborators defines the external interfaces the research core
// (C1–C8) consumes, per spec §6. Implementations live in sibling packages
// (collaborators/llm, collaborators/search, ...) grounded on the teacher's
// domain libraries (internal/embeddings, internal/reranking, internal/reading,
// internal/chunking, internal/scraping); the core never imports those
// concrete packages directly, only this interface set.
package collaborators

import (
	"context"
	"time"
)

// Usage reports token accounting for a single collaborator call, matching
// the (prompt, completion, total) triple the tracker (C4) accumulates.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLM generates a schema-constrained object from a prompt or message history.
// Implementations must support either native JSON-schema enforcement or a
// lenient fallback parse of loosely-formed JSON (§4.5).
type LLM interface {
	// GenerateObject invokes the model with schema, a system prompt, and a
	// message history, retrying per the bounded policy in §4.5/§7. dst must
	// be a pointer; on success it is populated from the parsed response.
	GenerateObject(ctx context.Context, schema Schema, systemPrompt string, messages []Message, dst any) (Usage, error)
}

// Schema is an opaque JSON-schema-like description handed to the LLM
// collaborator. Concrete adapters interpret Raw as a JSON Schema document;
// DescriptionsStripped requests the fallback variant used on retry (§4.5).
type Schema struct {
	Raw                   map[string]any
	DescriptionsStripped  bool
}

// MessageRole is the speaker of one message in a synthetic conversation.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is one turn in the prompt's rendered history (§4.5).
type Message struct {
	Role MessageRole
	Text string
}

// SearchResult is one hit returned by the Search collaborator.
type SearchResult struct {
	Title       string
	URL         string
	Description string
	Date        string
	Content     string
}

// Search issues a web search query and returns ranked hits.
type Search interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Link is an anchor discovered while fetching a page.
type Link struct {
	Anchor string
	Href   string
}

// FetchResult is the distilled content of one fetched page.
type FetchResult struct {
	Title       string
	Description string
	URL         string
	Content     string
	MIMEType    string
	Links       []Link
	Usage       Usage
}

// Fetch retrieves a URL's content and (optionally) its outbound links.
type Fetch interface {
	Fetch(ctx context.Context, url string, withLinks bool) (FetchResult, error)
}

// Embed produces dense embedding vectors for a batch of texts, used by
// semantic dedup (§4.3, §4.6) and cherry-picking (§4.6 visit).
type Embed interface {
	Embed(ctx context.Context, texts []string) ([][]float32, int, error)
}

// RerankResult is one scored document from a Rerank call.
type RerankResult struct {
	Index          int
	RelevanceScore float32
}

// Rerank scores documents against a query, used by the URL ledger's
// rerank_boost factor (§4.1).
type Rerank interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RerankResult, error)
}

// ClassifySpam reports whether short fetched content looks like spam (§4.6 visit).
type ClassifySpam interface {
	ClassifySpam(ctx context.Context, text string) (bool, error)
}

// CherryPick extracts the short, question-relevant snippet from a long page
// body (§4.6 visit, §6).
type CherryPick interface {
	CherryPick(ctx context.Context, question, longText string) (string, error)
}

// LastModified looks up a page's last-modified date with a confidence score
// in [0, 100]; callers should ignore results below 70 confidence (§4.6 answer).
type LastModified interface {
	LastModified(ctx context.Context, url string) (date time.Time, confidence int, err error)
}

// CodeSandboxResult is the outcome of a CodeSandbox.Solve call.
type CodeSandboxResult struct {
	Output string
	Code   string
}

// CodeSandboxContext is the read-only snapshot handed to the sandbox: diary,
// the current top-ranked URLs, and accumulated knowledge (§4.6 code).
type CodeSandboxContext struct {
	Diary     string
	TopURLs   []string
	Knowledge string
}

// CodeSandbox resolves a coding issue given session context.
type CodeSandbox interface {
	Solve(ctx context.Context, issue string, sessionCtx CodeSandboxContext) (CodeSandboxResult, error)
}
