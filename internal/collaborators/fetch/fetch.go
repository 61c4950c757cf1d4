// Package fetch implements collaborators.Fetch on top of
// internal/scraping.DownloadContent, adding HTML title/description and
// outbound-link extraction via golang.org/x/net/html (a new use of that
// dependency: the teacher only used it for its HTTP download conventions,
// never for DOM parsing).
package fetch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/antflydb/deepresearch/internal/ai"
	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/reading"
	"github.com/antflydb/deepresearch/internal/s3"
	"github.com/antflydb/deepresearch/internal/scraping"
)

// Adapter implements collaborators.Fetch using scraping.DownloadContent,
// falling back to OCR via internal/reading.Reader for image and PDF
// content (§4.6 "visit" supplements: the distilled spec only names HTML
// fetch, but original_source/deepresearch also reads image/PDF evidence).
type Adapter struct {
	security *scraping.ContentSecurityConfig
	s3Creds  *s3.Credentials
	reader   reading.Reader
	logger   *zap.Logger
}

// New returns an Adapter that downloads under the given security policy.
// s3Creds may be nil if s3:// URLs are never fetched. reader may be nil, in
// which case image/PDF content is returned undecoded (empty Content).
// logger may be nil, in which case OCR fallback outcomes go unlogged.
func New(security *scraping.ContentSecurityConfig, s3Creds *s3.Credentials, reader reading.Reader, logger *zap.Logger) *Adapter {
	return &Adapter{security: security, s3Creds: s3Creds, reader: reader, logger: logger}
}

// Fetch downloads url's content. HTML content yields title/meta
// description/outbound anchors (if withLinks). Image and PDF content is
// OCR'd into Content via the configured reading.Reader, when set.
func (a *Adapter) Fetch(ctx context.Context, url string, withLinks bool) (collaborators.FetchResult, error) {
	mimeType, data, err := scraping.DownloadContent(ctx, url, a.security, a.s3Creds)
	if err != nil {
		return collaborators.FetchResult{}, fmt.Errorf("fetch: %w", err)
	}

	result := collaborators.FetchResult{
		URL:      url,
		MIMEType: mimeType,
		Content:  string(data),
	}

	switch {
	case strings.HasPrefix(mimeType, "text/html"):
		title, desc, links := parseHTML(data, withLinks)
		result.Title = title
		result.Description = desc
		if withLinks {
			result.Links = links
		}
	case strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf":
		result.Content = ""
		if a.reader == nil {
			break
		}
		pages, rerr := a.reader.Read(ctx, []ai.BinaryContent{ai.NewBinaryContent(mimeType, data)}, nil)
		switch {
		case rerr != nil:
			a.logFetch("OCR read failed", zap.String("url", url), zap.String("mime_type", mimeType), zap.Error(rerr))
		case len(pages) == 0 || strings.TrimSpace(pages[0]) == "":
			a.logFetch("OCR read produced no text", zap.String("url", url), zap.String("mime_type", mimeType))
		default:
			result.Content = pages[0]
		}
	}

	return result, nil
}

// logFetch logs a fetch-path event at warn level if a logger was configured.
func (a *Adapter) logFetch(msg string, fields ...zap.Field) {
	if a.logger != nil {
		a.logger.Warn(msg, fields...)
	}
}

func parseHTML(data []byte, withLinks bool) (title, description string, links []collaborators.Link) {
	node, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", "", nil
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && title == "" {
					title = n.FirstChild.Data
				}
			case "meta":
				if isDescriptionMeta(n) {
					description = metaContent(n)
				}
			case "a":
				if withLinks {
					if href, ok := attr(n, "href"); ok {
						links = append(links, collaborators.Link{Anchor: textContent(n), Href: href})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return title, description, links
}

func isDescriptionMeta(n *html.Node) bool {
	name, ok := attr(n, "name")
	return ok && strings.EqualFold(name, "description")
}

func metaContent(n *html.Node) string {
	content, _ := attr(n, "content")
	return content
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
