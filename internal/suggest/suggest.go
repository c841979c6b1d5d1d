// Package suggest proposes known identifiers for a misspelled one.
package suggest

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/agext/levenshtein"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/mixlab/internal/ir"
)

// DefaultCacheSize is used when New is given a non-positive size.
const DefaultCacheSize = 256

// minScore filters out candidates that share too little with the query.
const minScore = 0.5

// maxResults caps the number of suggestions returned.
const maxResults = 3

// Match is one ranked suggestion.
type Match struct {
	Identifier ir.Identifier
	Score      float64
}

// Suggester ranks known identifiers by similarity. Results are cached per
// query; the cache is safe for concurrent use.
type Suggester struct {
	known []ir.Identifier
	cache *lru.Cache[ir.Identifier, []Match]
	hits  atomic.Int64
}

// New returns a suggester over the given identifiers.
func New(known []ir.Identifier, size int) *Suggester {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[ir.Identifier, []Match](size)

	seen := make(map[ir.Identifier]bool, len(known))
	ids := make([]ir.Identifier, 0, len(known))
	for _, id := range known {
		n := id.Normalize()
		if n.IsEmpty() || seen[n] {
			continue
		}
		seen[n] = true
		ids = append(ids, id)
	}
	return &Suggester{known: ids, cache: cache}
}

// Known reports whether id matches a known identifier by identity.
func (s *Suggester) Known(id ir.Identifier) bool {
	return slices.ContainsFunc(s.known, id.Same)
}

// Suggest returns up to three known identifiers close to query, best
// first. An exact identity match returns nothing.
func (s *Suggester) Suggest(query ir.Identifier) []Match {
	q := query.Normalize()
	if q.IsEmpty() || s.Known(q) {
		return nil
	}
	if cached, ok := s.cache.Get(q); ok {
		s.hits.Add(1)
		return slices.Clone(cached)
	}

	var matches []Match
	for _, id := range s.known {
		if score := similarity(string(q), string(id.Normalize())); score >= minScore {
			matches = append(matches, Match{Identifier: id, Score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(string(a.Identifier), string(b.Identifier))
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	s.cache.Add(q, matches)
	return slices.Clone(matches)
}

// Hits returns how many Suggest calls were answered from the cache.
func (s *Suggester) Hits() int64 { return s.hits.Load() }

// ForReactants maps every unknown reactant, trimmed, to its suggestions.
// A reactant with no close match maps to an empty list.
func (s *Suggester) ForReactants(reactants []string) map[string][]string {
	out := make(map[string][]string)
	for _, r := range reactants {
		id := ir.Identifier(r)
		if id.IsEmpty() || s.Known(id) {
			continue
		}
		names := []string{}
		for _, m := range s.Suggest(id) {
			names = append(names, string(m.Identifier))
		}
		out[strings.TrimSpace(r)] = names
	}
	return out
}

// similarity returns 1 - distance/maxlen in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if strings.HasPrefix(b, a) || strings.HasPrefix(a, b) {
		return 0.9
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 0
	}
	score := 1.0 - float64(levenshtein.Distance(a, b, nil))/float64(maxLen)
	return max(score, 0)
}
