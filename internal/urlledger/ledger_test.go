package urlledger

import (
	"context"
	"testing"
)

func TestInsertMergesRepeatObservations(t *testing.T) {
	l := New(DefaultCoefficients(), nil)

	key1, err := l.Insert("https://example.org/a", "Title", "first part", WeightSearchResult)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	key2, err := l.Insert("https://www.example.org/a", "", "first part second part", WeightSearchResult)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if key1 != key2 {
		t.Fatalf("expected both inserts to normalize to the same key, got %q and %q", key1, key2)
	}
	if l.Known() != 1 {
		t.Fatalf("Known() = %d, want 1", l.Known())
	}

	rec, ok := l.Get(key1)
	if !ok {
		t.Fatal("expected record to exist")
	}
	if rec.Weight != 2*WeightSearchResult {
		t.Errorf("Weight = %v, want %v", rec.Weight, 2*WeightSearchResult)
	}
	if rec.Title != "Title" {
		t.Errorf("Title = %q, want %q (should not be overwritten once set)", rec.Title, "Title")
	}
}

func TestInsertSkipsBadHostname(t *testing.T) {
	l := New(DefaultCoefficients(), nil)
	l.MarkBadHostname("example.org")

	key, err := l.Insert("https://example.org/a", "t", "d", WeightSearchResult)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if l.Known() != 0 {
		t.Errorf("Known() = %d, want 0 (bad hostname should reject insert)", l.Known())
	}
	if _, ok := l.Get(key); ok {
		t.Error("expected no record for a bad hostname")
	}
}

func TestMarkBadHostnameEvictsExisting(t *testing.T) {
	l := New(DefaultCoefficients(), nil)
	l.Insert("https://bad.org/a", "t", "d", WeightSearchResult)
	l.Insert("https://good.org/a", "t", "d", WeightSearchResult)

	l.MarkBadHostname("bad.org")

	if l.Known() != 1 {
		t.Fatalf("Known() = %d, want 1 after eviction", l.Known())
	}
	key, _ := Normalize("https://bad.org/a")
	if !l.IsBadURL(key) {
		t.Error("expected evicted URL to be marked bad")
	}
}

func TestRankOrdersByFinalScoreDescending(t *testing.T) {
	l := New(DefaultCoefficients(), nil)
	l.Insert("https://a.org/x", "A", "desc a", WeightSearchResult)
	l.Insert("https://a.org/x", "A", "desc a", WeightSearchResult) // double weight
	l.Insert("https://b.org/y", "B", "desc b", WeightSearchResult)

	ranked := l.Rank(context.Background(), RankOptions{Question: "", DiversifyPerHost: 0})
	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}
	if ranked[0].FinalScore < ranked[1].FinalScore {
		t.Errorf("expected descending score order, got %v then %v", ranked[0].FinalScore, ranked[1].FinalScore)
	}
	keyA, _ := Normalize("https://a.org/x")
	if ranked[0].Key != keyA {
		t.Errorf("expected the double-weighted record to rank first, got %q", ranked[0].Key)
	}
}

func TestRankExcludesVisitedAndBad(t *testing.T) {
	l := New(DefaultCoefficients(), nil)
	key, _ := l.Insert("https://a.org/x", "A", "d", WeightSearchResult)
	l.Insert("https://b.org/y", "B", "d", WeightSearchResult)
	l.MarkVisited(key)

	ranked := l.Rank(context.Background(), RankOptions{DiversifyPerHost: 0})
	for _, c := range ranked {
		if c.Key == key {
			t.Errorf("visited key %q should not appear in ranking", key)
		}
	}
}

func TestDiversifyCapsPerHostname(t *testing.T) {
	l := New(DefaultCoefficients(), nil)
	for i := 0; i < 5; i++ {
		l.Insert("https://a.org/p"+string(rune('0'+i)), "t", "d", WeightSearchResult)
	}
	l.Insert("https://b.org/z", "t", "d", WeightSearchResult)

	ranked := l.Rank(context.Background(), RankOptions{DiversifyPerHost: 2})

	counts := make(map[string]int)
	for _, c := range ranked {
		counts[Hostname(c.Key)]++
	}
	if counts["a.org"] > 2 {
		t.Errorf("a.org count = %d, want <= 2", counts["a.org"])
	}
	if counts["b.org"] != 1 {
		t.Errorf("b.org count = %d, want 1", counts["b.org"])
	}

	// Diversification must not evict records from the underlying ledger.
	if l.Known() != 6 {
		t.Errorf("Known() = %d, want 6 (diversify should not mutate the ledger)", l.Known())
	}
}
