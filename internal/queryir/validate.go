package queryir

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/mixlab/internal/ir"
)

// ErrInvalidQuery is returned for filters that cannot be evaluated.
var ErrInvalidQuery = errors.New("invalid query")

// ValidationResult lists every problem found in a query.
type ValidationResult struct {
	Errors []string
}

// Valid reports whether no problems were found.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// Err returns nil for a valid query, otherwise ErrInvalidQuery carrying
// all messages.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return errors.Wrap(ErrInvalidQuery, strings.Join(r.Errors, "; "))
}

// Validate checks a query without touching any backend.
func Validate(q Select) ValidationResult {
	v := &validator{}
	if q.Limit < 0 {
		v.add("limit must not be negative, got %d", q.Limit)
	}
	v.predicate("filter", q.Filter)
	return ValidationResult{Errors: v.errs}
}

type validator struct {
	errs []string
}

func (v *validator) add(format string, args ...any) {
	v.errs = append(v.errs, fmt.Sprintf(format, args...))
}

func (v *validator) predicate(path string, p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		if _, err := NormalizeValue(pred); err != nil {
			v.add("%s: %v", path, err)
		}
	case HasReactant:
		if pred.ID.IsEmpty() {
			v.add("%s: reactant identifier is empty", path)
		}
	case Requires:
		if strings.TrimSpace(pred.Apparatus) == "" {
			v.add("%s: apparatus is empty", path)
		}
	case And:
		for i, sub := range pred.Predicates {
			v.predicate(fmt.Sprintf("%s.and[%d]", path, i), sub)
		}
	case Or:
		for i, sub := range pred.Predicates {
			v.predicate(fmt.Sprintf("%s.or[%d]", path, i), sub)
		}
	default:
		v.add("%s: unsupported predicate %T", path, p)
	}
}

// NormalizeValue returns the comparable form of an Equals value: a string
// for text fields and an int64 for integer fields. Keys are canonicalized
// and reaction types parsed so spellings collapse the same way they do at
// build time.
func NormalizeValue(eq Equals) (any, error) {
	integer, ok := Fields[eq.Field]
	if !ok {
		return nil, errors.Newf("unknown field %q", eq.Field)
	}

	if integer {
		switch val := eq.Value.(type) {
		case int:
			return int64(val), nil
		case int64:
			return val, nil
		default:
			return nil, errors.Newf("field %s needs an integer value, got %T", eq.Field, eq.Value)
		}
	}

	var s string
	switch val := eq.Value.(type) {
	case string:
		s = val
	case ir.ReactionType:
		s = string(val)
	case ir.Identifier:
		s = string(val)
	case ir.Key:
		s = val.String()
	case nil:
		return nil, errors.Newf("field %s compared to null", eq.Field)
	default:
		return nil, errors.Newf("field %s needs a string value, got %T", eq.Field, eq.Value)
	}

	switch eq.Field {
	case FieldKey:
		return ir.ParseKey(s).String(), nil
	case FieldType:
		return string(ir.ParseReactionType(s)), nil
	}
	return s, nil
}
