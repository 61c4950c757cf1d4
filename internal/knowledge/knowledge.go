// Package knowledge implements the append-only knowledge store (C2): the
// accumulated (question, answer) observations rendered into the LLM prompt
// as tagged blocks, per spec §3 and §4.2.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/antflydb/deepresearch/internal/model"
)

// Store is an append-only, insertion-ordered list of knowledge items. Items
// are never mutated or removed once appended (§3 invariant).
type Store struct {
	items []model.KnowledgeItem
}

// New returns an empty knowledge store.
func New() *Store {
	return &Store{}
}

// Append adds item to the end of the store.
func (s *Store) Append(item model.KnowledgeItem) {
	s.items = append(s.items, item)
}

// Items returns every item in insertion order. The returned slice must not
// be mutated by the caller.
func (s *Store) Items() []model.KnowledgeItem {
	return s.items
}

// Len returns the number of accumulated items.
func (s *Store) Len() int {
	return len(s.items)
}

// Render formats every item as a tagged block suitable for inclusion in the
// generator prompt (§4.2, §4.5), in insertion order, with blank lines
// between items collapsed so the rendered diary never has more than one
// consecutive empty line.
func (s *Store) Render() string {
	var b strings.Builder
	for i, item := range s.items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderBlock(item))
	}
	return collapseBlankLines(b.String())
}

func renderBlock(item model.KnowledgeItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s>\n", item.Kind)
	switch item.Kind {
	case model.KindURL:
		fmt.Fprintf(&b, "URL: %s\n", item.URL)
	case model.KindCoding:
		fmt.Fprintf(&b, "Issue: %s\n", item.Question)
		if item.Code != "" {
			fmt.Fprintf(&b, "Code:\n%s\n", item.Code)
		}
	}
	if item.Question != "" && item.Kind != model.KindCoding {
		fmt.Fprintf(&b, "Q: %s\n", item.Question)
	}
	if item.Answer != "" {
		fmt.Fprintf(&b, "A: %s\n", item.Answer)
	}
	for _, ref := range item.References {
		fmt.Fprintf(&b, "[%s] %s\n", ref.URL, ref.ExactQuote)
	}
	fmt.Fprintf(&b, "</%s>", item.Kind)
	return b.String()
}

// collapseBlankLines replaces any run of 2+ consecutive blank lines with a
// single blank line.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		isBlank := strings.TrimSpace(line) == ""
		if isBlank && blank {
			continue
		}
		out = append(out, line)
		blank = isBlank
	}
	return strings.Join(out, "\n")
}
