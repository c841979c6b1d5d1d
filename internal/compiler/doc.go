// Package compiler turns authored reaction rules and a substance catalog
// into a complete rule table.
//
// Build canonicalizes authored keys, lets later entries win on collision
// and fills every pair and triple of catalog identifiers that has no
// authored rule with a placeholder record. Validate reports malformed
// records with stable E2xx codes.
package compiler
