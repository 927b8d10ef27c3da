// Package search resolves free-text test names against the price catalog.
//
// The library does no logging and holds no mutable state after
// construction, so a Matcher is safe for concurrent use.
//
// A query is split on commas into fragments. Each non-empty fragment is
// scored against every catalog name (see WRatio) and the best entry is
// accepted only when its score is strictly above the threshold. Ties keep
// the entry that appears first in the catalog. Fragments without a match
// are dropped, the rest keep their input order and repeats are not merged.
package search

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tbourn/elix-bot/internal/domain"
)

// DefaultThreshold is the exclusive lower bound a score must exceed.
const DefaultThreshold = 60

// Index is the interface consumed by the pricing flow.
type Index interface {
	Match(query string) []domain.MatchResult
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	threshold int
	scorer    Scorer
}

func defaultConfig() config {
	return config{
		threshold: DefaultThreshold,
		scorer:    WRatio,
	}
}

// WithThreshold overrides the acceptance threshold; values outside 0..100
// are ignored.
func WithThreshold(n int) Option {
	return func(c *config) {
		if n >= 0 && n <= 100 {
			c.threshold = n
		}
	}
}

// WithScorer replaces the similarity function. It receives normalized
// strings (fragment, catalog name).
func WithScorer(s Scorer) Option {
	return func(c *config) {
		if s != nil {
			c.scorer = s
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type candidate struct {
	entry domain.CatalogEntry
	norm  string
}

// Matcher is an immutable fuzzy index over catalog names.
type Matcher struct {
	cfg        config
	candidates []candidate
}

var _ Index = (*Matcher)(nil)

// NewMatcher indexes entries in the given order.
func NewMatcher(entries []domain.CatalogEntry, opts ...Option) *Matcher {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	cs := make([]candidate, 0, len(entries))
	for _, e := range entries {
		cs = append(cs, candidate{entry: e, norm: Normalize(e.Name)})
	}
	return &Matcher{cfg: cfg, candidates: cs}
}

// Threshold reports the configured acceptance threshold.
func (m *Matcher) Threshold() int { return m.cfg.threshold }

// Match resolves every fragment of query. An empty query yields nil.
func (m *Matcher) Match(query string) []domain.MatchResult {
	frags := SplitFragments(query)
	if len(frags) == 0 || len(m.candidates) == 0 {
		return nil
	}
	var out []domain.MatchResult
	for _, f := range frags {
		if r, ok := m.Best(f); ok {
			out = append(out, r)
		}
	}
	return out
}

// Best returns the highest-scoring entry for a single fragment, and whether
// it cleared the threshold.
func (m *Matcher) Best(fragment string) (domain.MatchResult, bool) {
	q := Normalize(fragment)
	if q == "" {
		return domain.MatchResult{}, false
	}
	bestIdx, bestScore := -1, -1
	for i, c := range m.candidates {
		// strict comparison keeps the earliest entry on ties
		if s := m.cfg.scorer(q, c.norm); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	if bestIdx < 0 || bestScore <= m.cfg.threshold {
		return domain.MatchResult{}, false
	}
	return domain.MatchResult{
		Fragment: strings.TrimSpace(fragment),
		Entry:    m.candidates[bestIdx].entry,
		Score:    bestScore,
	}, true
}

// SplitFragments splits on commas, trims each part and drops empty ones.
func SplitFragments(query string) []string {
	parts := strings.Split(query, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Total sums the prices of the matched entries.
func Total(results []domain.MatchResult) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(r.Entry.Price)
	}
	return sum
}
