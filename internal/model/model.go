// Package model holds the domain types shared across the research agent's
// ledgers, generator, executors, and evaluator: questions, knowledge items,
// references, and the evaluation-obligation sum type. Keeping them in one
// leaf package (the teacher's eval/types.go shape) avoids import cycles
// between the C1–C8 components that all need to see the same vocabulary.
package model

import "time"

// KnowledgeKind discriminates a KnowledgeItem's origin.
type KnowledgeKind string

const (
	KindQA          KnowledgeKind = "qa"
	KindSideInfo    KnowledgeKind = "side-info"
	KindChatHistory KnowledgeKind = "chat-history"
	KindURL         KnowledgeKind = "url"
	KindCoding      KnowledgeKind = "coding"
)

// KnowledgeItem is an append-only (question, answer) observation accumulated
// over the course of a session. Never mutated after insertion.
type KnowledgeItem struct {
	Kind       KnowledgeKind
	Question   string
	Answer     string
	References []Reference
	UpdatedAt  time.Time
	// URL is set only for Kind == KindURL: the single source page.
	URL string
	// Code is set only for Kind == KindCoding: the sandbox-produced source.
	Code string
}

// Reference is a citation attached to an answer action.
type Reference struct {
	ExactQuote string
	URL        string
	Title      string
	DateTime   string
}

// Criterion names one evaluation rule the Evaluator can run against a
// candidate answer.
type Criterion string

const (
	CriterionDefinitive  Criterion = "DEFINITIVE"
	CriterionFreshness   Criterion = "FRESHNESS"
	CriterionPlurality   Criterion = "PLURALITY"
	CriterionCompleteness Criterion = "COMPLETENESS"
	CriterionAttribution Criterion = "ATTRIBUTION"
	CriterionStrict      Criterion = "STRICT"
)

// Obligation is one evaluation criterion attached to a question. It is a
// single struct discriminated by Criterion that carries every criterion's
// fields; the criterion-specific fields below are set only for their own
// criterion and stay zero for the others.
type Obligation struct {
	Criterion         Criterion
	RemainingAttempts int

	// Freshness-only fields.
	MaxAgeDays float64

	// Plurality-only fields.
	RequiredCount int
	ProvidedCount int

	// Strict-only field: populated after a STRICT failure, consulted by the
	// next answer prompt for the original question.
	ImprovementPlan string
}

// Action is the tagged variant the LLM emits each step: exactly one of
// search/visit/answer/reflect/code, discriminated by Type.
type ActionType string

const (
	ActionSearch  ActionType = "search"
	ActionVisit   ActionType = "visit"
	ActionAnswer  ActionType = "answer"
	ActionReflect ActionType = "reflect"
	ActionCode    ActionType = "code"
)

// Action carries the think rationale plus exactly one populated sub-payload
// matching Type.
type Action struct {
	Type  ActionType
	Think string

	Search  *SearchAction
	Visit   *VisitAction
	Answer  *AnswerAction
	Reflect *ReflectAction
	Code    *CodeAction

	// IsFinal is set by the orchestrator (not the LLM) once an answer action
	// has either short-circuited, passed evaluation, or been produced by
	// beast mode.
	IsFinal bool
}

// SearchAction requests one or more web searches.
type SearchAction struct {
	Queries       []string
	OnlyHostnames []string
}

// VisitAction requests fetching one or more short-listed URLs by index.
type VisitAction struct {
	Indices []int
}

// AnswerAction proposes a final answer with supporting references.
type AnswerAction struct {
	Text       string
	References []Reference
}

// ReflectAction proposes new open sub-questions (gaps).
type ReflectAction struct {
	SubQuestions []string
}

// CodeAction asks the code sandbox collaborator to resolve an issue.
type CodeAction struct {
	Issue string
}
