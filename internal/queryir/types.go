package queryir

import (
	"github.com/roach88/mixlab/internal/ir"
)

// Field names a column of the reactions relation.
type Field string

const (
	FieldKey             Field = "key"
	FieldArity           Field = "arity"
	FieldType            Field = "type"
	FieldProduct         Field = "product"
	FieldColor           Field = "color"
	FieldHeat            Field = "heat"
	FieldMinTemp         Field = "min_temp"
	FieldMaxTemp         Field = "max_temp"
	FieldDurationSeconds Field = "duration_seconds"
)

// Fields lists the fields a filter may compare. Integer-valued fields map
// to true.
var Fields = map[Field]bool{
	FieldKey:             false,
	FieldArity:           true,
	FieldType:            false,
	FieldProduct:         false,
	FieldColor:           false,
	FieldHeat:            false,
	FieldMinTemp:         true,
	FieldMaxTemp:         true,
	FieldDurationSeconds: true,
}

// Select picks rows from the reactions relation.
//
// Rows are always returned in ascending key order. Limit of zero means no
// limit.
type Select struct {
	Filter Predicate // nil matches every row
	Limit  int
}

// Predicate is a sealed interface for filter nodes.
type Predicate interface {
	predicateNode()
}

// Equals compares a field to a string or integer value.
type Equals struct {
	Field Field
	Value any
}

func (Equals) predicateNode() {}

// HasReactant matches rows whose key contains the identifier.
// Identifiers compare after normalization, so "naoh" matches NAOH.
type HasReactant struct {
	ID ir.Identifier
}

func (HasReactant) predicateNode() {}

// Requires matches rows whose authored requirements name the apparatus.
// Implied heating requirements of endothermic records are not included.
type Requires struct {
	Apparatus string
}

func (Requires) predicateNode() {}

// And is a conjunction. Empty means always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is a disjunction. Empty means always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Row is one matched record with its key.
type Row struct {
	Key      ir.Key
	Reaction ir.Reaction
}
