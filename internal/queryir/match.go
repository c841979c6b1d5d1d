package queryir

import (
	"github.com/roach88/mixlab/internal/ir"
)

// Match evaluates p against one record. Invalid predicates never match.
func Match(p Predicate, k ir.Key, r ir.Reaction) bool {
	switch pred := p.(type) {
	case nil:
		return true
	case Equals:
		want, err := NormalizeValue(pred)
		if err != nil {
			return false
		}
		got, ok := fieldValue(pred.Field, k, r)
		return ok && got == want
	case HasReactant:
		id := pred.ID.Normalize()
		for _, part := range k.Parts() {
			if part == id {
				return true
			}
		}
		return false
	case Requires:
		want := ir.Identifier(pred.Apparatus).Normalize()
		for _, req := range r.Requires {
			if ir.Identifier(req).Normalize() == want {
				return true
			}
		}
		return false
	case And:
		for _, sub := range pred.Predicates {
			if !Match(sub, k, r) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range pred.Predicates {
			if Match(sub, k, r) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Filter applies q to every entry of t in key order.
func Filter(q Select, t *ir.Table) []Row {
	var rows []Row
	t.Each(func(k ir.Key, r ir.Reaction) bool {
		if Match(q.Filter, k, r) {
			rows = append(rows, Row{Key: k, Reaction: r})
		}
		return q.Limit == 0 || len(rows) < q.Limit
	})
	return rows
}

func fieldValue(f Field, k ir.Key, r ir.Reaction) (any, bool) {
	switch f {
	case FieldKey:
		return k.String(), true
	case FieldArity:
		return int64(k.Arity()), true
	case FieldType:
		return string(r.Type), true
	case FieldProduct:
		return deref(r.Product)
	case FieldColor:
		return deref(r.Color)
	case FieldHeat:
		return deref(r.Heat)
	case FieldMinTemp:
		return derefInt(r.MinTemp)
	case FieldMaxTemp:
		return derefInt(r.MaxTemp)
	case FieldDurationSeconds:
		return derefInt(r.DurationSeconds)
	}
	return nil, false
}

func deref(p *string) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func derefInt(p *int64) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}
