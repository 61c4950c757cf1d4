// Package urlledger implements the URL ledger (C1): normalization,
// deduplication, multi-factor scoring, per-hostname diversification, and the
// visit lifecycle described in spec §3 and §4.1.
package urlledger

import (
	"context"
	"sort"
	"time"

	"github.com/antflydb/deepresearch/internal/collaborators"
)

// Weight deltas applied per observation: a search result or an in-page link.
const (
	WeightSearchResult = 1.0
	WeightInPageLink   = 0.1
)

// Record is one URL's accumulated state.
type Record struct {
	Key         string
	Title       string
	Description string
	Weight      float64
	FirstSeen   time.Time
	Visited     bool
}

// Coefficients are the ranking formula's tunable parameters (§4.1).
type Coefficients struct {
	FreqFactor     float64
	HostnameFactor float64
	PathFactor     float64
	PathDecay      float64
	RerankFactor   float64
	MinBoost       float64
	MaxBoost       float64
}

// DefaultCoefficients matches the values named in spec §4.1.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		FreqFactor:     0.5,
		HostnameFactor: 0.5,
		PathFactor:     0.4,
		PathDecay:      0.8,
		RerankFactor:   0.8,
		MinBoost:       0,
		MaxBoost:       5,
	}
}

// Candidate is one ranked, scored URL surfaced for a visit action.
type Candidate struct {
	Record
	FreqBoost     float64
	HostnameBoost float64
	PathBoost     float64
	RerankBoost   float64
	FinalScore    float64
}

// Ledger owns every URL observed during a session: known records, the
// visited set, and the bad-hostname/bad-URL sets (§3 invariants).
type Ledger struct {
	coeffs Coefficients
	rerank collaborators.Rerank

	order   []string // insertion order, for ties and ranking stability
	records map[string]*Record

	visited    map[string]bool
	badURLs    map[string]bool
	badHosts   map[string]bool
	visitedSeq []string
}

// New creates an empty ledger using the given ranking coefficients and
// rerank collaborator (may be nil; rerank_boost then degrades to 0 per §4.1).
func New(coeffs Coefficients, rerank collaborators.Rerank) *Ledger {
	return &Ledger{
		coeffs:   coeffs,
		rerank:   rerank,
		records:  make(map[string]*Record),
		visited:  make(map[string]bool),
		badURLs:  make(map[string]bool),
		badHosts: make(map[string]bool),
	}
}

// Insert adds or merges an observation for the given raw URL. weight is the
// delta to apply (WeightSearchResult or WeightInPageLink). Returns the
// normalized key, or an error if the URL was rejected by Normalize.
func (l *Ledger) Insert(rawURL, title, description string, weight float64) (string, error) {
	key, err := Normalize(rawURL)
	if err != nil {
		return "", err
	}
	if l.badHosts[Hostname(key)] {
		return key, nil
	}

	if rec, ok := l.records[key]; ok {
		rec.Weight += weight
		rec.Description = SmartMergeStrings(rec.Description, description)
		if rec.Title == "" {
			rec.Title = title
		}
		return key, nil
	}

	l.records[key] = &Record{
		Key:         key,
		Title:       title,
		Description: description,
		Weight:      weight,
		FirstSeen:   time.Now(),
	}
	l.order = append(l.order, key)
	return key, nil
}

// Get returns the record for a normalized key, if known.
func (l *Ledger) Get(key string) (Record, bool) {
	rec, ok := l.records[key]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Known returns the total number of distinct normalized URLs observed.
func (l *Ledger) Known() int {
	return len(l.records)
}

// MarkVisited records a visit attempt for key, success or failure (§4.6 visit).
func (l *Ledger) MarkVisited(key string) {
	if rec, ok := l.records[key]; ok {
		rec.Visited = true
	}
	if !l.visited[key] {
		l.visited[key] = true
	}
	l.visitedSeq = append(l.visitedSeq, key)
}

// IsVisited reports whether key has been attempted at least once.
func (l *Ledger) IsVisited(key string) bool {
	return l.visited[key]
}

// MarkBadURL adds key to the permanent-failure set (§4.6 visit, §7).
func (l *Ledger) MarkBadURL(key string) {
	l.badURLs[key] = true
}

// MarkBadHostname adds hostname to the bad-hostname set and evicts every
// ledger entry under that hostname (§4.6 visit DNS-failure handling).
func (l *Ledger) MarkBadHostname(hostname string) {
	l.badHosts[hostname] = true
	for key := range l.records {
		if Hostname(key) == hostname {
			delete(l.records, key)
			l.badURLs[key] = true
		}
	}
	filtered := l.order[:0:0]
	for _, key := range l.order {
		if Hostname(key) != hostname {
			filtered = append(filtered, key)
		}
	}
	l.order = filtered
}

// IsBadURL reports whether key is in the bad-URL set.
func (l *Ledger) IsBadURL(key string) bool {
	return l.badURLs[key]
}

// VisitedKeys returns every key ever attempted, in attempt order.
func (l *Ledger) VisitedKeys() []string {
	out := make([]string, len(l.visitedSeq))
	copy(out, l.visitedSeq)
	return out
}

// AllKeys returns every known key, in insertion order.
func (l *Ledger) AllKeys() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// ReadKeys returns visited-minus-bad keys (§6 Research result: read_urls).
func (l *Ledger) ReadKeys() []string {
	var out []string
	for _, key := range l.visitedSeq {
		if !l.badURLs[key] {
			out = append(out, key)
		}
	}
	return out
}

// RankOptions parameterizes a single ranking pass.
type RankOptions struct {
	Question          string
	BoostedHostnames  map[string]bool
	DiversifyPerHost  int // K in §4.1 Diversification; 0 disables diversification
}

// Rank scores every known, non-visited URL and returns them in descending
// final-score order, hostname-diversified per RankOptions.DiversifyPerHost.
// Rerank collaborator failures degrade rerank_boost to 0 without failing
// the step (§4.1, §7).
func (l *Ledger) Rank(ctx context.Context, opts RankOptions) []Candidate {
	total := l.Known()
	if total == 0 {
		return nil
	}

	hostCounts := make(map[string]int)
	pathCounts := make(map[string]int)
	for _, key := range l.order {
		host := Hostname(key)
		hostCounts[host]++
		for _, p := range pathPrefixes(key) {
			pathCounts[p]++
		}
	}

	rerankScores := l.batchRerank(ctx, opts.Question)

	candidates := make([]Candidate, 0, total)
	for _, key := range l.order {
		rec := l.records[key]
		if rec == nil || rec.Visited || l.badURLs[key] {
			continue
		}
		host := Hostname(key)

		freqBoost := clip(rec.Weight/float64(total)*l.coeffs.FreqFactor, l.coeffs.MinBoost, l.coeffs.MaxBoost)

		hostBoost := float64(hostCounts[host]) / float64(total) * l.coeffs.HostnameFactor
		if opts.BoostedHostnames[host] {
			hostBoost *= 2
		}
		hostBoost = clip(hostBoost, l.coeffs.MinBoost, l.coeffs.MaxBoost)

		var pathBoost float64
		decay := 1.0
		for _, p := range pathPrefixes(key) {
			pathBoost += float64(pathCounts[p]) / float64(total) * decay * l.coeffs.PathFactor
			decay *= l.coeffs.PathDecay
		}
		pathBoost = clip(pathBoost, l.coeffs.MinBoost, l.coeffs.MaxBoost)

		merged := mergedContent(rec.Title, rec.Description)
		rerankBoost := clip(rerankScores[merged]*l.coeffs.RerankFactor, l.coeffs.MinBoost, l.coeffs.MaxBoost)

		candidates = append(candidates, Candidate{
			Record:        *rec,
			FreqBoost:     freqBoost,
			HostnameBoost: hostBoost,
			PathBoost:     pathBoost,
			RerankBoost:   rerankBoost,
			FinalScore:    freqBoost + hostBoost + pathBoost + rerankBoost,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})

	if opts.DiversifyPerHost <= 0 {
		return candidates
	}
	return diversify(candidates, opts.DiversifyPerHost)
}

// batchRerank calls the rerank collaborator once over the set of *unique*
// merged title⊕description strings (content-addressed dedup), per §4.1's
// "rerank budget of N documents covers the m≤N distinct contents".
func (l *Ledger) batchRerank(ctx context.Context, question string) map[string]float64 {
	scores := make(map[string]float64)
	if l.rerank == nil || question == "" {
		return scores
	}

	seen := make(map[string]bool)
	var docs []string
	for _, key := range l.order {
		rec := l.records[key]
		if rec == nil {
			continue
		}
		merged := mergedContent(rec.Title, rec.Description)
		if merged == "" || seen[merged] {
			continue
		}
		seen[merged] = true
		docs = append(docs, merged)
	}
	if len(docs) == 0 {
		return scores
	}

	results, err := l.rerank.Rerank(ctx, question, docs)
	if err != nil {
		return scores
	}
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(docs) {
			continue
		}
		scores[docs[r.Index]] = float64(r.RelevanceScore)
	}
	return scores
}

func mergedContent(title, description string) string {
	if title == "" {
		return description
	}
	if description == "" {
		return title
	}
	return title + " " + description
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// diversify keeps at most k records per hostname while preserving relative
// order; excess records are dropped from the selection but remain in the
// ledger (§4.1 Diversification).
func diversify(sorted []Candidate, k int) []Candidate {
	counts := make(map[string]int)
	out := make([]Candidate, 0, len(sorted))
	for _, c := range sorted {
		host := Hostname(c.Key)
		if counts[host] >= k {
			continue
		}
		counts[host]++
		out = append(out, c)
	}
	return out
}

// pathPrefixes returns the cumulative path-prefix sequence of a normalized
// URL, deepest first (matching the path_boost formula's p_i ordering), e.g.
// "https://h/a/b/c" -> ["/a/b/c", "/a/b", "/a"].
func pathPrefixes(normalizedKey string) []string {
	u, err := parseForPath(normalizedKey)
	if err != nil {
		return nil
	}
	segs := splitPath(u)
	if len(segs) == 0 {
		return nil
	}
	out := make([]string, 0, len(segs))
	for i := len(segs); i > 0; i-- {
		out = append(out, "/"+joinPath(segs[:i]))
	}
	return out
}
