package lastmodified

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLastModifiedParsesHeaderWithHighConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Tue, 15 Nov 1994 12:45:26 GMT")
	}))
	defer srv.Close()

	a := New(nil)
	date, confidence, err := a.LastModified(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("LastModified: %v", err)
	}
	if confidence != 90 {
		t.Errorf("confidence = %d, want 90", confidence)
	}
	if date.Year() != 1994 {
		t.Errorf("date.Year() = %d, want 1994", date.Year())
	}
}

func TestLastModifiedZeroConfidenceWhenHeaderAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	a := New(nil)
	date, confidence, err := a.LastModified(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("LastModified: %v", err)
	}
	if confidence != 0 || !date.IsZero() {
		t.Errorf("got date=%v confidence=%d, want zero value and 0 when header is absent", date, confidence)
	}
}

func TestLastModifiedZeroConfidenceWhenHeaderUnparseable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "not-a-date")
	}))
	defer srv.Close()

	a := New(nil)
	date, confidence, err := a.LastModified(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("LastModified: %v", err)
	}
	if confidence != 0 || !date.IsZero() {
		t.Errorf("got date=%v confidence=%d, want zero value and 0 for an unparseable header", date, confidence)
	}
}
