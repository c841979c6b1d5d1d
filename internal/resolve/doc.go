// Package resolve is the runtime lookup of a rule table. Given the
// identifiers in a vessel and the apparatus present, Resolve returns a
// resolved, blocked or not-found outcome.
package resolve
