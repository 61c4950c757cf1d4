package executors

import (
	"context"
	"errors"
	"testing"

	"github.com/antflydb/deepresearch/internal/collaborators"
	"github.com/antflydb/deepresearch/internal/knowledge"
	"github.com/antflydb/deepresearch/internal/questions"
	"github.com/antflydb/deepresearch/internal/tracker"
	"github.com/antflydb/deepresearch/internal/urlledger"
)

// fakeSearch returns canned results per query, or an error for queries in err.
type fakeSearch struct {
	results map[string][]collaborators.SearchResult
	errs    map[string]error
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]collaborators.SearchResult, error) {
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

type fakeFetch struct {
	results map[string]collaborators.FetchResult
	errs    map[string]error
}

func (f *fakeFetch) Fetch(ctx context.Context, url string, withLinks bool) (collaborators.FetchResult, error) {
	if err, ok := f.errs[url]; ok {
		return collaborators.FetchResult{}, err
	}
	return f.results[url], nil
}

type fakeDNSErr struct{}

func (fakeDNSErr) Error() string { return "lookup badhost.invalid: no such host" }

func newSession() *Session {
	return &Session{
		URLs:      urlledger.New(urlledger.DefaultCoefficients(), nil),
		Knowledge: knowledge.New(),
		Questions: questions.New(context.Background(), "orig question", nil, 0),
		Tracker:   tracker.New(0, nil),
	}
}

func TestNewOutboundLimiterDisabledWhenNonPositive(t *testing.T) {
	if NewOutboundLimiter(0) != nil {
		t.Error("expected nil limiter for rate 0")
	}
	if NewOutboundLimiter(-1) != nil {
		t.Error("expected nil limiter for negative rate")
	}
}

func TestNewOutboundLimiterClampsBurst(t *testing.T) {
	l := NewOutboundLimiter(1)
	if l == nil {
		t.Fatal("expected non-nil limiter")
	}
	if l.Burst() != 1 {
		t.Errorf("Burst() = %d, want 1 (clamped minimum)", l.Burst())
	}

	l2 := NewOutboundLimiter(1000)
	if l2.Burst() != 5 {
		t.Errorf("Burst() = %d, want 5 (clamped maximum)", l2.Burst())
	}
}

func TestThrottleNoopWhenNilLimiter(t *testing.T) {
	if err := throttle(context.Background(), nil); err != nil {
		t.Errorf("throttle with nil limiter: %v", err)
	}
}

func TestDedupSemanticExactMatchWithoutEmbedder(t *testing.T) {
	got := dedupSemantic(context.Background(), nil, []string{"a", "b", "a"}, []string{"b"}, 0)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("dedupSemantic = %v, want [a]", got)
	}
}

func TestCosineSimilarityMismatchedLength(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 2}, []float32{1}); got != 0 {
		t.Errorf("cosineSimilarity = %v, want 0", got)
	}
}

func TestFanOutPreservesOrderAndFailures(t *testing.T) {
	items := []int{1, 2, 3}
	results := fanOut(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("boom")
		}
		return n * 10, nil
	})

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, want := range []int{1, 2, 3} {
		if results[i].Item != want {
			t.Errorf("results[%d].Item = %d, want %d", i, results[i].Item, want)
		}
	}
	if results[1].Err == nil {
		t.Error("expected results[1].Err to be non-nil")
	}
	if results[0].Val != 10 || results[2].Val != 30 {
		t.Errorf("successful results = %v, %v", results[0].Val, results[2].Val)
	}
}
