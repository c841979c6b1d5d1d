package compiler

import (
	"go.uber.org/zap"

	"github.com/roach88/mixlab/internal/ir"
)

// BuildStats summarizes a build.
type BuildStats struct {
	Authored   int `json:"authored"`   // authored entries read
	Overridden int `json:"overridden"` // authored entries replaced by a later canonical twin
	Skipped    int `json:"skipped"`    // authored keys with no surviving parts
	Rejected   int `json:"rejected"`   // catalog identifiers containing the key separator
	Pairs      int `json:"pairs"`      // C(n,2) over the de-duplicated catalog
	Triples    int `json:"triples"`    // C(n,3)
	Generated  int `json:"generated"`  // placeholders inserted
	Total      int `json:"total"`      // entries in the finished table
}

type buildConfig struct {
	logger *zap.SugaredLogger
}

// Option configures Build.
type Option func(*buildConfig)

// WithLogger sets the logger used to report collisions and skipped keys.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Build completes an authored rule set over a catalog.
//
// Authored keys are canonicalized first; when two raw keys collide the
// later one wins. Every unordered pair and triple of distinct catalog
// identifiers that has no authored entry receives ir.Placeholder().
// Generated defaults never replace an authored entry. A catalog with
// fewer than two identifiers yields no generated entries.
func Build(catalog []ir.Identifier, authored ir.RuleSet, opts ...Option) (*ir.Table, BuildStats) {
	cfg := buildConfig{logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger

	var stats BuildStats
	entries := make(map[ir.Key]ir.Reaction, len(authored))
	origin := make(map[ir.Key]string, len(authored))

	for _, rule := range authored {
		stats.Authored++
		key := ir.ParseKey(rule.RawKey)
		if key.IsZero() {
			stats.Skipped++
			log.Warnw("skipping authored rule with empty key", "raw_key", rule.RawKey)
			continue
		}
		if prev, ok := origin[key]; ok {
			stats.Overridden++
			log.Warnw("authored rule overrides earlier entry",
				"key", key.String(), "earlier", prev, "later", rule.RawKey)
		}
		entries[key] = rule.Reaction.Clone()
		origin[key] = rule.RawKey
	}

	for _, id := range catalog {
		if id.IsCompound() {
			stats.Rejected++
			log.Warnw("skipping catalog identifier containing key separator", "identifier", string(id))
		}
	}

	ids := DistinctIdentifiers(catalog)
	for _, combo := range Closure(ids) {
		if len(combo) == 2 {
			stats.Pairs++
		} else {
			stats.Triples++
		}
		key := ir.KeyOf(combo...)
		if _, ok := entries[key]; ok {
			continue
		}
		entries[key] = ir.Placeholder()
		stats.Generated++
	}

	table := ir.NewTable(entries)
	stats.Total = table.Len()
	log.Debugw("rule table built",
		"authored", stats.Authored,
		"overridden", stats.Overridden,
		"generated", stats.Generated,
		"total", stats.Total)
	return table, stats
}

// DistinctIdentifiers drops blank and compound identifiers and collapses
// repeats by identity, keeping the first occurrence.
func DistinctIdentifiers(ids []ir.Identifier) []ir.Identifier {
	seen := make(map[ir.Identifier]bool, len(ids))
	out := make([]ir.Identifier, 0, len(ids))
	for _, id := range ids {
		if id.IsEmpty() || id.IsCompound() || seen[id.Normalize()] {
			continue
		}
		seen[id.Normalize()] = true
		out = append(out, id)
	}
	return out
}

// Closure returns every unordered pair followed by every unordered triple
// of ids, in index order. ids must already be distinct.
func Closure(ids []ir.Identifier) [][]ir.Identifier {
	n := len(ids)
	if n < 2 {
		return nil
	}
	out := make([][]ir.Identifier, 0, Binomial(n, 2)+Binomial(n, 3))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, []ir.Identifier{ids[i], ids[j]})
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				out = append(out, []ir.Identifier{ids[i], ids[j], ids[k]})
			}
		}
	}
	return out
}

// Binomial returns C(n, k).
func Binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
	}
	return result
}
