package urlledger

import (
	"errors"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// ErrRejectedURL is returned by Normalize for inputs that can never become a
// ledger key: non-http(s) schemes, empty strings, and sentinel/SERP URLs.
var ErrRejectedURL = errors.New("urlledger: rejected url")

var trackingParamPrefixes = []string{"utm_"}

var trackingParamNames = map[string]bool{
	"ref": true, "fbclid": true, "gclid": true, "msclkid": true,
	"mc_cid": true, "mc_eid": true, "igshid": true, "si": true,
}

var sessionParamNames = map[string]bool{
	"sid": true, "sessionid": true, "session_id": true, "phpsessid": true,
	"jsessionid": true, "aspsessionid": true,
}

var xStatusAnalyticsPattern = regexp.MustCompile(
	`^(https?://(?:www\.)?(?:x\.com|twitter\.com)/[^/]+/status/\d+)/analytics/?$`,
)

// Normalize canonicalizes a raw URL string into the deterministic key used
// by the URL ledger (§4.1). Two inputs that normalize to the same key refer
// to the same ledger record.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrRejectedURL
	}
	if strings.Contains(raw, "example.com") {
		return "", ErrRejectedURL
	}
	if isGoogleSERP(raw) {
		return "", ErrRejectedURL
	}

	if m := xStatusAnalyticsPattern.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrRejectedURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrRejectedURL
	}
	if u.Host == "" {
		return "", ErrRejectedURL
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", ErrRejectedURL
	}
	if host == "google.com" {
		return "", ErrRejectedURL
	}

	port := u.Port()
	hostport := host
	if port != "" && !isDefaultPort(u.Scheme, port) {
		hostport = host + ":" + port
	}

	path, err := normalizePath(u.EscapedPath())
	if err != nil {
		return "", ErrRejectedURL
	}

	query := normalizeQuery(u.RawQuery)

	var b strings.Builder
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	b.WriteString(hostport)
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String(), nil
}

func isGoogleSERP(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "https://www.google.com/search") ||
		strings.HasPrefix(lower, "https://google.com/search") ||
		strings.Contains(lower, "google.com/url?")
}

func isDefaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}

// normalizePath percent-decodes each path segment when the re-encoded form
// round-trips, collapses repeated slashes, and drops a trailing slash
// except on the root path.
func normalizePath(escaped string) (string, error) {
	if escaped == "" {
		return "/", nil
	}

	segments := strings.Split(escaped, "/")
	for i, seg := range segments {
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			continue
		}
		if url.PathEscape(decoded) == seg {
			segments[i] = decoded
		}
	}

	joined := strings.Join(segments, "/")

	collapsed := regexp.MustCompile(`/+`).ReplaceAllString(joined, "/")
	if collapsed == "" {
		collapsed = "/"
	}
	if !strings.HasPrefix(collapsed, "/") {
		collapsed = "/" + collapsed
	}
	if len(collapsed) > 1 && strings.HasSuffix(collapsed, "/") {
		collapsed = strings.TrimSuffix(collapsed, "/")
	}
	return collapsed, nil
}

// normalizeQuery drops session-id, utm_*, and tracking parameters, then
// sorts the remainder lexicographically by key.
func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		lk := strings.ToLower(k)
		if sessionParamNames[lk] || trackingParamNames[lk] {
			continue
		}
		skip := false
		for _, prefix := range trackingParamPrefixes {
			if strings.HasPrefix(lk, prefix) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		vs := values[k]
		sort.Strings(vs)
		for j, v := range vs {
			if j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Hostname extracts the normalized hostname from an already-normalized key.
func Hostname(normalizedKey string) string {
	u, err := url.Parse(normalizedKey)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// parseForPath is a thin wrapper so ledger.go's path-prefix walk shares the
// same URL parser without importing net/url itself.
func parseForPath(normalizedKey string) (*url.URL, error) {
	return url.Parse(normalizedKey)
}

// splitPath returns u's path segments with empty segments (leading/trailing
// slash, repeated slashes) removed.
func splitPath(u *url.URL) []string {
	parts := strings.Split(u.EscapedPath(), "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// joinPath re-joins path segments with "/", the inverse of splitPath.
func joinPath(segs []string) string {
	return strings.Join(segs, "/")
}
