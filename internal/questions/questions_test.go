package questions

import (
	"context"
	"testing"
)

// fakeEmbed maps known strings to fixed vectors so cosine similarity is
// deterministic in tests; unknown strings embed to a distinct orthogonal
// vector.
type fakeEmbed struct {
	vectors map[string][]float32
}

func (f *fakeEmbed) Embed(ctx context.Context, texts []string) ([][]float32, int, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, len(texts), nil
}

func TestOriginalNeverRemoved(t *testing.T) {
	tr := New(context.Background(), "what is go", nil, 0)
	if tr.Original() != "what is go" {
		t.Fatalf("Original() = %q", tr.Original())
	}
	tr.ProposeGaps(context.Background(), []string{"who made go"})
	if tr.Original() != "what is go" {
		t.Error("Original() changed after proposing gaps")
	}
}

func TestSelectRoundRobin(t *testing.T) {
	tr := New(context.Background(), "orig", nil, 0)
	tr.ProposeGaps(context.Background(), []string{"g1", "g2", "g3"})

	for step, want := range []string{"g1", "g2", "g3", "g1", "g2"} {
		if got := tr.Select(step); got != want {
			t.Errorf("Select(%d) = %q, want %q", step, got, want)
		}
	}
}

func TestSelectFallsBackToOriginalWhenNoGaps(t *testing.T) {
	tr := New(context.Background(), "orig", nil, 0)
	if got := tr.Select(0); got != "orig" {
		t.Errorf("Select(0) = %q, want %q", got, "orig")
	}
}

func TestResolveGapRemovesFromOpenSet(t *testing.T) {
	tr := New(context.Background(), "orig", nil, 0)
	tr.ProposeGaps(context.Background(), []string{"g1", "g2"})
	tr.ResolveGap("g1")

	gaps := tr.Gaps()
	if len(gaps) != 1 || gaps[0] != "g2" {
		t.Errorf("Gaps() = %v, want [g2]", gaps)
	}
	if !tr.HasGaps() {
		t.Error("HasGaps() = false, want true")
	}
}

func TestProposeGapsExactDuplicateRejectedWithoutEmbedder(t *testing.T) {
	tr := New(context.Background(), "orig", nil, 0)
	accepted, err := tr.ProposeGaps(context.Background(), []string{"g1"})
	if err != nil {
		t.Fatalf("ProposeGaps: %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("first proposal should be accepted, got %v", accepted)
	}

	accepted, err = tr.ProposeGaps(context.Background(), []string{"g1", "orig"})
	if err != nil {
		t.Fatalf("ProposeGaps: %v", err)
	}
	if len(accepted) != 0 {
		t.Errorf("expected exact-duplicate candidates to be rejected, got %v", accepted)
	}
}

func TestProposeGapsSemanticDuplicateRejectedWithEmbedder(t *testing.T) {
	embed := &fakeEmbed{vectors: map[string][]float32{
		"orig":          {1, 0, 0},
		"what is go":    {1, 0, 0},
		"paraphrase":    {0.99, 0.01, 0},
		"unrelated one": {0, 1, 0},
	}}
	tr := New(context.Background(), "orig", embed, 0.9)

	accepted, err := tr.ProposeGaps(context.Background(), []string{"paraphrase", "unrelated one"})
	if err != nil {
		t.Fatalf("ProposeGaps: %v", err)
	}
	if len(accepted) != 1 || accepted[0] != "unrelated one" {
		t.Errorf("ProposeGaps() = %v, want only the non-duplicate candidate accepted", accepted)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"mismatched length", []float32{1, 0, 0}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := cosineSimilarity(c.a, c.b); got != c.want {
				t.Errorf("cosineSimilarity(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}
