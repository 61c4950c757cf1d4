// Package lastmodified implements collaborators.LastModified via a plain
// HTTP HEAD request and Last-Modified header parsing, grounded on
// internal/scraping's context-aware HTTP request conventions
// (internal/scraping/scraping.go's downloadHTTPWithMime).
package lastmodified

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Adapter implements collaborators.LastModified using net/http directly;
// no third-party dependency in the pack exposes this as a standalone
// service, so this is the one ambient HTTP client built on the standard
// library rather than an adapted teacher package.
type Adapter struct {
	client *http.Client
}

// New returns an Adapter using client, or http.DefaultClient if nil.
func New(client *http.Client) *Adapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &Adapter{client: client}
}

// LastModified issues a HEAD request and parses the Last-Modified header.
// Confidence is 90 when the header is present and parses, 0 otherwise —
// callers per §6 should ignore results below 70.
func (a *Adapter) LastModified(ctx context.Context, url string) (time.Time, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("lastmodified: building request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("lastmodified: %w", err)
	}
	defer resp.Body.Close()

	header := resp.Header.Get("Last-Modified")
	if header == "" {
		return time.Time{}, 0, nil
	}

	parsed, err := http.ParseTime(header)
	if err != nil {
		return time.Time{}, 0, nil
	}
	return parsed, 90, nil
}
