package audit

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Listing caps for the text report.
const (
	maxListed          = 20
	maxDuplicateGroups = 50
	maxGroupMembers    = 5
)

// DuplicateGroup is one entry of Report.DuplicateGroups.
type DuplicateGroup struct {
	Canonical string
	RawKeys   []string
}

// Duplicates returns the duplicate groups sorted by canonical key.
func (r *Report) Duplicates() []DuplicateGroup {
	out := make([]DuplicateGroup, 0, len(r.DuplicateGroups))
	for canon, raws := range r.DuplicateGroups {
		out = append(out, DuplicateGroup{Canonical: canon, RawKeys: raws})
	}
	slices.SortFunc(out, func(a, b DuplicateGroup) int {
		return strings.Compare(a.Canonical, b.Canonical)
	})
	return out
}

// WriteText renders the maintenance report. Long listings are capped.
func (r *Report) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("Total entries: %d\n", r.Total)

	ew.printf("Entries with empty components: %d\n", len(r.EmptyComponentKeys))
	for i, k := range capped(r.EmptyComponentKeys, maxListed) {
		ew.printf("  %d. %s\n", i+1, k)
	}

	dups := r.Duplicates()
	ew.printf("\nOrder-insensitive duplicates: %d\n", len(dups))
	for i, g := range capped(dups, maxDuplicateGroups) {
		ew.printf("  %d. %s -> [%s]\n", i+1, g.Canonical, strings.Join(capped(g.RawKeys, maxGroupMembers), ", "))
	}

	ew.printf("\nBracket issues: %d\n", len(r.UnbalancedBracketKeys))
	for i, b := range capped(r.UnbalancedBracketKeys, maxListed) {
		ew.printf("  %d. %s (%s)\n", i+1, b.Key, b.Reason)
	}

	ew.printf("\nKeys containing lowercase letters: %d\n", len(r.NonCanonicalKeys))
	for _, k := range capped(r.NonCanonicalKeys, maxListed) {
		ew.printf("   %s\n", k)
	}
	return ew.err
}

func capped[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
