// Package queryir provides a small filter representation for browsing a
// built reaction table.
//
// A Select names the rows of the reactions relation that should be
// returned. Filters are trees of predicates:
//
//	And{Predicates: []Predicate{
//	  Equals{Field: FieldType, Value: "precipitation"},
//	  HasReactant{ID: "NaOH"},
//	  Requires{Apparatus: "stirrer"},
//	}}
//
// The IR is backend-neutral. The querysql package compiles it to
// parameterized SQLite for the store package; Match evaluates it directly
// against in-memory records so both paths can be checked against each
// other.
//
// Rules:
//   - Field names come from a closed set (see Fields)
//   - Values are strings or integers, never NULL or floating point
//   - An empty And matches every row; an empty Or matches none
package queryir
