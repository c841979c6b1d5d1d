// Package ir provides the core data model for mixlab: identifiers,
// canonical keys, reaction records, and immutable rule tables.
//
// This package imports nothing internal. All other internal packages
// import ir, keeping it the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - A Key can only be produced by canonicalization (trim, NFC,
//     upper-case, ordinal sort, "+" join); it is the map key of a Table
//   - Tables are immutable after NewTable and safe to share
//   - No float types in records; temperatures and durations are int64
//   - All JSON tags use snake_case
package ir
