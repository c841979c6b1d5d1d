package audit

import (
	"strings"
	"unicode"

	"github.com/roach88/mixlab/internal/ir"
)

// ReasonUnbalancedParentheses is reported when '(' and ')' counts differ.
const ReasonUnbalancedParentheses = "unbalanced parentheses"

// BracketIssue records a raw key with a bracket problem.
type BracketIssue struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Report collects every anomaly found in a set of raw keys. A key may
// appear in several categories.
type Report struct {
	Total                 int                 `json:"total"`
	EmptyComponentKeys    []string            `json:"empty_component_keys"`
	UnbalancedBracketKeys []BracketIssue      `json:"unbalanced_bracket_keys"`
	DuplicateGroups       map[string][]string `json:"duplicate_groups"`
	NonCanonicalKeys      []string            `json:"non_canonical_keys"`
}

// Clean reports whether no anomaly was found.
func (r *Report) Clean() bool {
	return len(r.EmptyComponentKeys) == 0 &&
		len(r.UnbalancedBracketKeys) == 0 &&
		len(r.DuplicateGroups) == 0 &&
		len(r.NonCanonicalKeys) == 0
}

// Audit inspects raw keys in the given order. It never mutates its input
// and never fails.
func Audit(keys []string) *Report {
	r := &Report{
		Total:                 len(keys),
		EmptyComponentKeys:    []string{},
		UnbalancedBracketKeys: []BracketIssue{},
		DuplicateGroups:       map[string][]string{},
		NonCanonicalKeys:      []string{},
	}

	groups := make(map[string][]string)
	for _, raw := range keys {
		if hasEmptyComponent(raw) {
			r.EmptyComponentKeys = append(r.EmptyComponentKeys, raw)
		}
		if strings.Count(raw, "(") != strings.Count(raw, ")") {
			r.UnbalancedBracketKeys = append(r.UnbalancedBracketKeys, BracketIssue{
				Key:    raw,
				Reason: ReasonUnbalancedParentheses,
			})
		}
		canon := ir.ParseKey(raw).String()
		groups[canon] = append(groups[canon], raw)
		if hasLower(raw) {
			r.NonCanonicalKeys = append(r.NonCanonicalKeys, raw)
		}
	}

	for canon, raws := range groups {
		if len(raws) > 1 {
			r.DuplicateGroups[canon] = raws
		}
	}
	return r
}

// AuditRules audits the raw keys of an authored rule set in document order.
func AuditRules(rules ir.RuleSet) *Report {
	return Audit(rules.Keys())
}

// AuditTable audits a built table. Canonical keys never produce duplicate
// groups or casing findings, so anything reported here points at a bad
// identifier in the catalog or the authored rules.
func AuditTable(t *ir.Table) *Report {
	keys := make([]string, 0, t.Len())
	for _, k := range t.Keys() {
		keys = append(keys, k.String())
	}
	return Audit(keys)
}

func hasEmptyComponent(raw string) bool {
	for _, part := range ir.SplitKey(raw) {
		if strings.TrimSpace(part) == "" {
			return true
		}
	}
	return false
}

func hasLower(s string) bool {
	for _, c := range s {
		if unicode.IsLower(c) {
			return true
		}
	}
	return false
}
