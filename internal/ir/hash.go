package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the algorithm to change later.
const (
	DomainRecord = "mixlab/record/v1"
	DomainTable  = "mixlab/table/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordHash computes the content hash of a single reaction record.
func RecordHash(r Reaction) (string, error) {
	canonical, err := MarshalCanonical(r.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("RecordHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// TableDigest computes a stable digest over every entry of a table.
// Two tables with the same keys and records have the same digest
// regardless of how they were built.
func TableDigest(t *Table) (string, error) {
	obj := make(map[string]any, t.Len())
	var firstErr error
	t.Each(func(k Key, r Reaction) bool {
		h, err := RecordHash(r)
		if err != nil {
			firstErr = fmt.Errorf("TableDigest: entry %s: %w", k, err)
			return false
		}
		obj[k.String()] = h
		return true
	})
	if firstErr != nil {
		return "", firstErr
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("TableDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}

// MustTableDigest is like TableDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTableDigest(t *Table) string {
	d, err := TableDigest(t)
	if err != nil {
		panic(err)
	}
	return d
}
