package executors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/model"
	"github.com/antflydb/deepresearch/internal/urlledger"
)

const shortContentSpamThreshold = 300

// Visit executes the visit action: translates indices into short-list keys,
// unions with the top of the weighted ledger, caps at MaxURLsPerStep, fetches
// every target in parallel, and folds results back into the session's
// ledgers on the joining goroutine (§4.6, §5).
func Visit(ctx context.Context, s *Session, shortList []urlledger.Candidate, action model.VisitAction) ([]model.KnowledgeItem, Gates, error) {
	gates := Gates{DisableVisit: true}

	targets := resolveTargets(shortList, action.Indices, s.URLs)
	if len(targets) == 0 {
		return nil, gates, fmt.Errorf("visit: no valid, unvisited targets")
	}
	if len(targets) > MaxURLsPerStep {
		targets = targets[:MaxURLsPerStep]
	}

	results := fanOut(ctx, targets, func(ctx context.Context, key string) (visitOutcome, error) {
		return fetchAndDistill(ctx, s, key)
	})

	var items []model.KnowledgeItem
	for _, r := range results {
		key := r.Item
		s.URLs.MarkVisited(key)

		if r.Err != nil {
			if isDNSFailure(r.Err) {
				s.URLs.MarkBadHostname(urlledger.Hostname(key))
			} else {
				s.URLs.MarkBadURL(key)
			}
			continue
		}
		if r.Val.spam {
			s.URLs.MarkBadURL(key)
			continue
		}

		for _, link := range r.Val.links {
			s.URLs.Insert(link.Href, link.Anchor, "", urlledger.WeightInPageLink)
		}

		items = append(items, model.KnowledgeItem{
			Kind:     model.KindURL,
			URL:      key,
			Question: r.Val.title,
			Answer:   r.Val.snippet,
		})
	}

	if len(items) > MaxURLsReadPerStep {
		items = items[:MaxURLsReadPerStep]
	}
	return items, gates, nil
}

// resolveTargets translates the model's chosen indices into ledger keys,
// rejecting out-of-range or already-visited entries, then unions with the
// remaining top-ranked, unvisited short-list entries so a visit step never
// starves when the model picks fewer than MaxURLsPerStep indices.
func resolveTargets(shortList []urlledger.Candidate, indices []int, ledger *urlledger.Ledger) []string {
	byIndex := make(map[int]string, len(shortList))
	for i, c := range shortList {
		byIndex[i] = c.Key
	}

	seen := make(map[string]bool)
	var targets []string
	for _, idx := range indices {
		key, ok := byIndex[idx]
		if !ok || ledger.IsVisited(key) || seen[key] {
			continue
		}
		seen[key] = true
		targets = append(targets, key)
	}

	for _, c := range shortList {
		if len(targets) >= MaxURLsPerStep {
			break
		}
		if ledger.IsVisited(c.Key) || seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		targets = append(targets, c.Key)
	}
	return targets
}

type visitOutcome struct {
	title   string
	snippet string
	links   []collaborators.Link
	spam    bool
}

func fetchAndDistill(ctx context.Context, s *Session, key string) (visitOutcome, error) {
	if err := throttle(ctx, s.OutboundLimiter); err != nil {
		return visitOutcome{}, fmt.Errorf("visit: rate limit: %w", err)
	}

	fctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()
	fetched, err := s.Collab.Fetch.Fetch(fctx, key, true)
	if err != nil {
		return visitOutcome{}, fmt.Errorf("visit: fetch %s: %w", key, err)
	}
	recordUsage(s, "fetch", fetched.Usage)

	if lm := s.Collab.LastModified; lm != nil {
		// Best-effort; failures and low confidence are simply ignored here,
		// the answer executor re-derives freshness separately when needed.
		lctx, lcancel := context.WithTimeout(ctx, FetchTimeout)
		_, _, _ = lm.LastModified(lctx, key)
		lcancel()
	}

	content := fetched.Content
	if len(content) < shortContentSpamThreshold && s.Collab.ClassifySpam != nil {
		cctx, ccancel := context.WithTimeout(ctx, ClassifyTimeout)
		spam, cerr := s.Collab.ClassifySpam.ClassifySpam(cctx, content)
		ccancel()
		if cerr == nil && spam {
			return visitOutcome{spam: true}, nil
		}
	}

	snippet := content
	if s.Collab.CherryPick != nil {
		question := s.Questions.Original()
		if picked, perr := s.Collab.CherryPick.CherryPick(ctx, question, content); perr == nil && picked != "" {
			snippet = picked
		}
	}

	return visitOutcome{title: fetched.Title, snippet: snippet, links: fetched.Links}, nil
}

// isDNSFailure reports whether err signals a DNS/host-resolution problem,
// the trigger for bad-hostname eviction (§4.6, §7).
func isDNSFailure(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such host")
}
