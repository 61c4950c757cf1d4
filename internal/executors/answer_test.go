package executors

import (
	"context"
	"testing"
	"time"

	"github.com/antflydb/deepresearch/internal/model"
	"github.com/antflydb/deepresearch/internal/urlledger"
)

type fakeLastModified struct {
	date       time.Time
	confidence int
	err        error
}

func (f *fakeLastModified) LastModified(ctx context.Context, url string) (time.Time, int, error) {
	return f.date, f.confidence, f.err
}

func TestAnswerTrivialShortCircuit(t *testing.T) {
	s := newSession()
	result := Answer(context.Background(), s, 1, model.AnswerAction{Text: "Paris"})

	if !result.IsTrivial {
		t.Error("expected a step-1, zero-reference answer to short-circuit")
	}
	if !result.Action.IsFinal {
		t.Error("expected the short-circuited answer to be marked final")
	}
	if !result.Gates.DisableAnswer {
		t.Error("expected DisableAnswer gate to be set")
	}
}

func TestAnswerNoShortCircuitWhenNoDirectAnswerSet(t *testing.T) {
	s := newSession()
	s.NoDirectAnswer = true
	result := Answer(context.Background(), s, 1, model.AnswerAction{Text: "Paris"})

	if result.IsTrivial {
		t.Error("expected no short-circuit when NoDirectAnswer is set")
	}
	if result.Action.IsFinal {
		t.Error("expected non-trivial answer to not be marked final yet")
	}
}

func TestAnswerNoShortCircuitWithReferences(t *testing.T) {
	s := newSession()
	result := Answer(context.Background(), s, 1, model.AnswerAction{
		Text:       "Paris",
		References: []model.Reference{{URL: "https://example.org/a", ExactQuote: "q"}},
	})
	if result.IsTrivial {
		t.Error("expected no short-circuit when references are present")
	}
}

func TestAnswerDropsUnnormalizableReferenceURLs(t *testing.T) {
	s := newSession()
	action := model.AnswerAction{
		Text: "answer",
		References: []model.Reference{
			{URL: "https://example.org/a", ExactQuote: "q1"},
			{URL: "not a url \x00", ExactQuote: "q2"},
		},
	}
	result := Answer(context.Background(), s, 2, action)
	if len(result.Action.Answer.References) != 1 {
		t.Errorf("References = %+v, want only the normalizable one to survive", result.Action.Answer.References)
	}
}

func TestAnswerDedupsReferences(t *testing.T) {
	s := newSession()
	action := model.AnswerAction{
		Text: "answer",
		References: []model.Reference{
			{URL: "https://example.org/a", ExactQuote: "same quote"},
			{URL: "https://example.org/a", ExactQuote: "same quote"},
		},
	}
	result := Answer(context.Background(), s, 2, action)
	if len(result.Action.Answer.References) != 1 {
		t.Errorf("References = %+v, want duplicates removed", result.Action.Answer.References)
	}
}

func TestAnswerEnrichesMissingDatesAboveConfidenceThreshold(t *testing.T) {
	s := newSession()
	s.Collab.LastModified = &fakeLastModified{date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), confidence: 90}

	action := model.AnswerAction{
		Text:       "answer",
		References: []model.Reference{{URL: "https://example.org/a", ExactQuote: "q"}},
	}
	result := Answer(context.Background(), s, 2, action)
	if result.Action.Answer.References[0].DateTime != "2025-01-02" {
		t.Errorf("DateTime = %q, want 2025-01-02", result.Action.Answer.References[0].DateTime)
	}
}

func TestAnswerIgnoresLowConfidenceDates(t *testing.T) {
	s := newSession()
	s.Collab.LastModified = &fakeLastModified{date: time.Now(), confidence: 40}

	action := model.AnswerAction{
		Text:       "answer",
		References: []model.Reference{{URL: "https://example.org/a", ExactQuote: "q"}},
	}
	result := Answer(context.Background(), s, 2, action)
	if result.Action.Answer.References[0].DateTime != "" {
		t.Error("expected low-confidence LastModified result to be ignored")
	}
}

func TestNormalizeReferencesFillsTitleFromLedger(t *testing.T) {
	l := urlledger.New(urlledger.DefaultCoefficients(), nil)
	l.Insert("https://example.org/a", "Known Title", "d", urlledger.WeightSearchResult)

	refs := normalizeReferences(l, []model.Reference{{URL: "https://example.org/a", ExactQuote: "q"}})
	if len(refs) != 1 || refs[0].Title != "Known Title" {
		t.Errorf("refs = %+v", refs)
	}
}
