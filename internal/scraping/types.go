package scraping

// ContentSecurityConfig bounds what DownloadContent is willing to fetch.
// Hand-written replacement for the oapi-codegen-generated type the teacher
// derived from openapi.yaml (not present in the retrieved pack); fields
// reconstructed from call sites in scraping.go.
type ContentSecurityConfig struct {
	// AllowedHosts, if non-empty, is the only set of hostnames http(s) fetches may target.
	AllowedHosts []string

	// AllowedPaths, if non-empty, restricts file:// and s3:// fetches to these path prefixes.
	AllowedPaths []string

	// BlockPrivateIps rejects hostnames that resolve to RFC1918/loopback/link-local addresses.
	BlockPrivateIps bool

	// MaxDownloadSizeBytes caps the number of bytes read from an http(s) response body or an s3:// object.
	MaxDownloadSizeBytes int64
}
