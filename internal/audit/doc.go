// Package audit inspects raw rule keys for problems a runtime lookup
// must not trust: empty components, unbalanced parentheses,
// order-insensitive duplicates and lowercase spellings.
package audit
