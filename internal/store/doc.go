// Package store writes and reads single-file SQLite snapshots of a rule
// table.
//
// A snapshot holds two tables:
//   - meta: format version, tool version, snapshot id, creation time,
//     table digest and entry count
//   - reactions: one row per canonical key with the record's fields and
//     its record hash
//
// Import checks the format version against ir.FormatConstraint and
// recomputes every record hash and the table digest, so a hand-edited or
// truncated snapshot is rejected rather than loaded.
//
// Select runs a queryir filter compiled by querysql against the reactions
// table. QueryFile verifies a snapshot before filtering it.
//
// # Database Configuration
//
//   - journal_mode=DELETE: a snapshot is one file
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
