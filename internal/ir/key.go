package ir

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// KeySeparator joins identifier parts in the string form of a Key.
const KeySeparator = "+"

// Identifier names a chemical, indicator, or apparatus item.
// Case and surrounding whitespace are not significant; use Normalize
// to obtain the identity form.
type Identifier string

// Normalize returns the identity form: trimmed, NFC, upper-case.
func (id Identifier) Normalize() Identifier {
	return Identifier(normalizePart(string(id)))
}

// IsEmpty reports whether the identifier trims to nothing.
func (id Identifier) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// IsCompound reports whether the identifier contains KeySeparator and
// would split into several key parts.
func (id Identifier) IsCompound() bool {
	return strings.Contains(string(id), KeySeparator)
}

// Same reports whether two identifiers have the same identity form.
func (id Identifier) Same(other Identifier) bool {
	return id.Normalize() == other.Normalize()
}

func normalizePart(s string) string {
	return strings.ToUpper(norm.NFC.String(strings.TrimSpace(s)))
}

// Key is the canonical identity of a combination of identifiers.
//
// A Key can only be produced by canonicalization, so two keys compare
// equal exactly when their inputs are permutations of the same multiset
// of identity forms. Key is comparable and is used directly as a map key.
// The zero Key has no parts.
type Key struct {
	id    string
	arity int
}

// Canonicalize derives the canonical key for the given raw parts.
//
// Each part is trimmed; parts that trim to empty are dropped; survivors
// are normalized, sorted by ordinal comparison and joined with "+".
// Repeated identical parts are preserved. Canonicalize never fails: a
// result with fewer than two parts is still returned and it is up to the
// caller (or the auditor) to treat it as structurally invalid.
//
// Identifiers never contain the separator; a part that does is split
// further so that ParseKey(k.String()) == k holds for every result.
func Canonicalize(parts ...string) Key {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, sub := range strings.Split(p, KeySeparator) {
			if strings.TrimSpace(sub) == "" {
				continue
			}
			out = append(out, normalizePart(sub))
		}
	}
	slices.Sort(out)
	return Key{id: strings.Join(out, KeySeparator), arity: len(out)}
}

// KeyOf canonicalizes a set of identifiers.
func KeyOf(ids ...Identifier) Key {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return Canonicalize(parts...)
}

// SplitKey splits a raw authored key on "+" without any normalization.
func SplitKey(raw string) []string {
	return strings.Split(raw, KeySeparator)
}

// ParseKey canonicalizes a raw "+"-joined key.
// ParseKey(k.String()) == k for every canonical k.
func ParseKey(raw string) Key {
	return Canonicalize(SplitKey(raw)...)
}

// String returns the canonical "+"-joined form.
func (k Key) String() string { return k.id }

// Arity returns the number of identifiers in the key.
func (k Key) Arity() int { return k.arity }

// IsZero reports whether the key has no parts.
func (k Key) IsZero() bool { return k.arity == 0 }

// Parts returns the sorted identity forms that make up the key.
func (k Key) Parts() []Identifier {
	if k.arity == 0 {
		return nil
	}
	raw := strings.Split(k.id, KeySeparator)
	ids := make([]Identifier, len(raw))
	for i, p := range raw {
		ids[i] = Identifier(p)
	}
	return ids
}

// Compare orders keys by their canonical string form.
func (k Key) Compare(other Key) int {
	return strings.Compare(k.id, other.id)
}

// MarshalText implements encoding.TextMarshaler so a Key can be a JSON object key.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.id), nil
}

// UnmarshalText re-canonicalizes the text it is given.
func (k *Key) UnmarshalText(text []byte) error {
	*k = ParseKey(string(text))
	return nil
}
