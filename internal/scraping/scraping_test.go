package scraping

import (
	"net"
	"testing"
)

func TestParseDataURIDecodesBase64(t *testing.T) {
	contentType, data, err := ParseDataURI("data:text/plain;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	if contentType != "text/plain" {
		t.Errorf("contentType = %q, want text/plain", contentType)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q, want hello", data)
	}
}

func TestParseDataURIPlainText(t *testing.T) {
	contentType, data, err := ParseDataURI("data:text/plain,hello%20world")
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	if contentType != "text/plain" {
		t.Errorf("contentType = %q, want text/plain", contentType)
	}
	if string(data) != "hello%20world" {
		t.Errorf("data = %q, want the literal unescaped text", data)
	}
}

func TestParseDataURIRejectsMissingComma(t *testing.T) {
	if _, _, err := ParseDataURI("data:text/plain;base64"); err == nil {
		t.Error("expected an error for a data URI missing the comma separator")
	}
}

func TestParseDataURIRejectsNonDataURI(t *testing.T) {
	if _, _, err := ParseDataURI("https://example.org/x"); err == nil {
		t.Error("expected an error for a non-data URI")
	}
}

func TestGuessMimeTypeFromExt(t *testing.T) {
	cases := map[string]string{
		"html": "text/html",
		"pdf":  "application/pdf",
		"png":  "image/png",
		"jpg":  "image/jpeg",
		"md":   "text/markdown",
		"xyz":  "application/octet-stream",
	}
	for ext, want := range cases {
		if got := guessMimeTypeFromExt(ext); got != want {
			t.Errorf("guessMimeTypeFromExt(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestValidateURLSecurityNilConfigAllowsAnything(t *testing.T) {
	if err := validateURLSecurity("https://anything.example.org/", nil); err != nil {
		t.Errorf("expected nil config to allow all URLs, got %v", err)
	}
}

func TestValidateURLSecurityEnforcesAllowlist(t *testing.T) {
	cfg := &ContentSecurityConfig{AllowedHosts: []string{"good.example.org"}}
	if err := validateURLSecurity("https://good.example.org/x", cfg); err != nil {
		t.Errorf("expected allowlisted host to pass, got %v", err)
	}
	if err := validateURLSecurity("https://bad.example.org/x", cfg); err == nil {
		t.Error("expected a non-allowlisted host to be rejected")
	}
}

func TestValidateURLSecurityIgnoresNonHTTPSchemes(t *testing.T) {
	cfg := &ContentSecurityConfig{AllowedHosts: []string{"good.example.org"}}
	if err := validateURLSecurity("file:///etc/passwd", cfg); err != nil {
		t.Errorf("expected validateURLSecurity to only police http(s) schemes, got %v", err)
	}
}

func TestValidatePathSecurityEnforcesAllowedPrefix(t *testing.T) {
	cfg := &ContentSecurityConfig{AllowedPaths: []string{"/data/public"}}
	if err := validatePathSecurity("/data/public/file.txt", cfg); err != nil {
		t.Errorf("expected an allowed path to pass, got %v", err)
	}
	if err := validatePathSecurity("/etc/passwd", cfg); err == nil {
		t.Error("expected a disallowed path to be rejected")
	}
}

func TestValidatePathSecurityNoConfigAllowsAnything(t *testing.T) {
	if err := validatePathSecurity("/etc/passwd", nil); err != nil {
		t.Errorf("expected nil config to allow all paths, got %v", err)
	}
}

func TestIsPrivateIPAddrRecognizesPrivateRanges(t *testing.T) {
	cases := map[string]bool{
		"10.0.0.5":       true,
		"172.16.0.1":     true,
		"192.168.1.1":    true,
		"127.0.0.1":      true,
		"169.254.1.1":    true,
		"8.8.8.8":        false,
		"1.1.1.1":        false,
	}
	for addr, want := range cases {
		ip := net.ParseIP(addr)
		if got := isPrivateIPAddr(ip); got != want {
			t.Errorf("isPrivateIPAddr(%q) = %v, want %v", addr, got, want)
		}
	}
}
