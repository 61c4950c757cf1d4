// Package classify implements collaborators.ClassifySpam as a thin HTTP JSON
// client, in the teacher's plugin-config shape (openrouter-genkit/openrouter.go's
// Config{APIKey, BaseURL, Timeout} + http.Client pattern) since no example
// repo ships a standalone spam-classification backend.
package classify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	ijson "github.com/antflydb/deepresearch/internal/json"
)

// Config configures the classifier endpoint.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Adapter implements collaborators.ClassifySpam against an HTTP endpoint
// that accepts {"text": "..."} and returns {"spam": bool}.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// New returns an Adapter using cfg.
func New(cfg Config) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Adapter{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Spam bool `json:"spam"`
}

// ClassifySpam posts text to the configured endpoint and returns its verdict.
func (a *Adapter) ClassifySpam(ctx context.Context, text string) (bool, error) {
	body, err := ijson.Marshal(classifyRequest{Text: text})
	if err != nil {
		return false, fmt.Errorf("classify: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("classify: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("classify: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("classify: endpoint returned status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := ijson.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("classify: decoding response: %w", err)
	}
	return out.Spam, nil
}
