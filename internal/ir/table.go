package ir

import (
	"slices"
)

// AuthoredRule is one hand-curated entry exactly as it appeared in a
// rule document.
type AuthoredRule struct {
	RawKey   string
	Reaction Reaction
}

// RuleSet is an insertion-ordered sequence of authored rules.
// Order matters: on canonical collision the later entry wins.
type RuleSet []AuthoredRule

// Keys returns the raw keys in insertion order.
func (rs RuleSet) Keys() []string {
	keys := make([]string, len(rs))
	for i, r := range rs {
		keys[i] = r.RawKey
	}
	return keys
}

// Table is an immutable mapping from canonical key to reaction record.
//
// A Table is built once and never mutated afterwards, so it may be
// shared by concurrent readers without locking. Lookup returns copies.
type Table struct {
	entries map[Key]Reaction
	keys    []Key // sorted by canonical string
}

// NewTable snapshots entries into a Table. Entries with a zero key are
// dropped. The input map is copied; later changes to it have no effect.
func NewTable(entries map[Key]Reaction) *Table {
	t := &Table{
		entries: make(map[Key]Reaction, len(entries)),
		keys:    make([]Key, 0, len(entries)),
	}
	for k, r := range entries {
		if k.IsZero() {
			continue
		}
		t.entries[k] = r.Clone()
		t.keys = append(t.keys, k)
	}
	slices.SortFunc(t.keys, Key.Compare)
	return t
}

// Lookup returns the record for k.
func (t *Table) Lookup(k Key) (Reaction, bool) {
	if t == nil {
		return Reaction{}, false
	}
	r, ok := t.entries[k]
	if !ok {
		return Reaction{}, false
	}
	return r.Clone(), true
}

// Has reports whether k is present.
func (t *Table) Has(k Key) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[k]
	return ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the keys in sorted order.
func (t *Table) Keys() []Key {
	if t == nil {
		return nil
	}
	return slices.Clone(t.keys)
}

// Each calls fn for every entry in key order until fn returns false.
func (t *Table) Each(fn func(Key, Reaction) bool) {
	if t == nil {
		return
	}
	for _, k := range t.keys {
		if !fn(k, t.entries[k].Clone()) {
			return
		}
	}
}

// Identifiers returns every distinct identifier appearing in a key, sorted.
func (t *Table) Identifiers() []Identifier {
	if t == nil {
		return nil
	}
	seen := make(map[Identifier]bool)
	var ids []Identifier
	for _, k := range t.keys {
		for _, p := range k.Parts() {
			if !seen[p] {
				seen[p] = true
				ids = append(ids, p)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

// CountByType tallies entries per reaction type.
func (t *Table) CountByType() map[ReactionType]int {
	counts := make(map[ReactionType]int)
	t.Each(func(_ Key, r Reaction) bool {
		counts[r.Type]++
		return true
	})
	return counts
}
