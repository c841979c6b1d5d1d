// Package loader reads and writes mixlab documents: the substance catalog,
// authored rule files in JSON, YAML or CUE, and the persisted rule table.
//
// Authored rules keep document order because the builder resolves
// canonical collisions in favour of the later entry. The persisted table
// is written atomically with a backup of the previous version.
package loader
