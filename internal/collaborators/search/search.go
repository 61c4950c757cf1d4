// Package search implements collaborators.Search as an HTTP JSON client
// against a configurable search API, in the teacher's endpoint-config shape
// (openrouter-genkit/openrouter.go's Config{APIKey, BaseURL, Timeout}).
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/antflydb/deepresearch/internal/collaborators"
	ijson "github.com/antflydb/deepresearch/internal/json"
)

// Config configures the search endpoint.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Adapter implements collaborators.Search against an HTTP endpoint that
// accepts ?q=<query> and returns a JSON object whose "results" array holds
// the hits.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// New returns an Adapter using cfg.
func New(cfg Config) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Adapter{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

type searchHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Content     string `json:"content"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

// Search issues the query and maps the response into collaborators.SearchResult.
func (a *Adapter) Search(ctx context.Context, query string) ([]collaborators.SearchResult, error) {
	endpoint := a.cfg.Endpoint + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("search: building request: %w", err)
	}
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search: endpoint returned status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := ijson.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("search: decoding response: %w", err)
	}

	results := make([]collaborators.SearchResult, len(out.Results))
	for i, hit := range out.Results {
		results[i] = collaborators.SearchResult{
			Title:       hit.Title,
			URL:         hit.URL,
			Description: hit.Description,
			Date:        hit.Date,
			Content:     hit.Content,
		}
	}
	return results, nil
}
