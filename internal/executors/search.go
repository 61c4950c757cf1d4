package executors

import (
	"context"
	"fmt"
	"strings"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
	"github.com/antflydb/deepresearch/internal/urlledger"
)

// usedQueries tracks every keyword executed across the session, so search
// can dedup against it and the generator can show it as a negative list
// (§4.5, §4.6, §8 invariant 6).
type usedQueries struct {
	all []string
}

func (u *usedQueries) All() []string {
	out := make([]string, len(u.all))
	copy(out, u.all)
	return out
}

func (u *usedQueries) Record(queries ...string) {
	u.all = append(u.all, queries...)
}

// UsedQueries is the session-scoped query history handed to Search on every
// call and surfaced to the generator as a negative list.
type UsedQueries = usedQueries

// NewUsedQueries returns an empty query history.
func NewUsedQueries() *UsedQueries {
	return &usedQueries{}
}

// Search executes the search action: two passes of query dedup + invoke +
// ledger insertion, per §4.6. The second pass asks rewriteQueries (supplied
// by the caller, normally backed by the LLM collaborator) for a refined
// query list given the first pass's digest.
func Search(
	ctx context.Context,
	s *Session,
	used *UsedQueries,
	action model.SearchAction,
	rewriteQueries func(ctx context.Context, firstPassDigest string) ([]string, error),
) (model.KnowledgeItem, []model.KnowledgeItem, Gates, error) {
	gates := Gates{DisableSearch: true}

	queries := dedupSemantic(ctx, s.Collab.Embed, action.Queries, used.All(), dedupSimilarityThreshold)
	if len(queries) > MaxQueriesPerStep {
		queries = queries[:MaxQueriesPerStep]
	}
	if len(queries) == 0 {
		return model.KnowledgeItem{}, nil, gates, fmt.Errorf("search: no novel queries after dedup")
	}

	firstItems, digest := runSearchPass(ctx, s, queries, action.OnlyHostnames)
	used.Record(queries...)

	if rewriteQueries == nil {
		return model.KnowledgeItem{}, firstItems, gates, nil
	}

	rewritten, err := rewriteQueries(ctx, digest)
	if err != nil || len(rewritten) == 0 {
		return model.KnowledgeItem{}, firstItems, gates, nil
	}
	rewritten = dedupSemantic(ctx, s.Collab.Embed, rewritten, used.All(), dedupSimilarityThreshold)
	if len(rewritten) > MaxQueriesPerStep {
		rewritten = rewritten[:MaxQueriesPerStep]
	}
	if len(rewritten) == 0 {
		return model.KnowledgeItem{}, firstItems, gates, nil
	}

	secondItems, _ := runSearchPass(ctx, s, rewritten, action.OnlyHostnames)
	used.Record(rewritten...)

	all := append(firstItems, secondItems...)
	return model.KnowledgeItem{}, all, gates, nil
}

// runSearchPass invokes the search collaborator for each query, merges
// every hit into the URL ledger, and returns one side-info KnowledgeItem per
// query plus a digest string summarizing all descriptions for query
// rewriting.
func runSearchPass(ctx context.Context, s *Session, queries, onlyHostnames []string) ([]model.KnowledgeItem, string) {
	type queryOutcome struct {
		query   string
		results []collaborators.SearchResult
	}

	rendered := make([]string, len(queries))
	for i, q := range queries {
		rendered[i] = applySiteFilter(q, onlyHostnames)
	}

	fanResults := fanOut(ctx, rendered, func(ctx context.Context, q string) ([]collaborators.SearchResult, error) {
		if err := throttle(ctx, s.OutboundLimiter); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, SearchTimeout)
		defer cancel()
		return s.Collab.Search.Search(ctx, q)
	})

	var items []model.KnowledgeItem
	var digestParts []string
	for i, r := range fanResults {
		query := queries[i]
		if r.Err != nil || len(r.Val) == 0 {
			items = append(items, model.KnowledgeItem{
				Kind:     model.KindSideInfo,
				Question: query,
				Answer:   "no results",
			})
			continue
		}

		var descriptions []string
		for _, hit := range r.Val {
			s.URLs.Insert(hit.URL, hit.Title, hit.Description, urlledger.WeightSearchResult)
			descriptions = append(descriptions, hit.Description)
		}
		merged := strings.Join(descriptions, " ")
		items = append(items, model.KnowledgeItem{
			Kind:     model.KindSideInfo,
			Question: query,
			Answer:   merged,
		})
		digestParts = append(digestParts, merged)
	}

	return items, strings.Join(digestParts, " ")
}

func applySiteFilter(query string, onlyHostnames []string) string {
	if len(onlyHostnames) == 0 {
		return query
	}
	var sites []string
	for _, h := range onlyHostnames {
		sites = append(sites, "site:"+h)
	}
	return query + " (" + strings.Join(sites, " OR ") + ")"
}
