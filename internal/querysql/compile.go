// Package querysql compiles queryir filters to parameterized SQLite
// statements over the snapshot reactions table.
package querysql

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/queryir"
)

// Table is the relation every query reads from.
const Table = "reactions"

// Compiler turns a queryir.Select into SQL text and bind parameters.
//
// Values are never interpolated; every comparison uses a ? placeholder.
// Every statement ends with ORDER BY key so results are deterministic.
type Compiler struct {
	// Columns is the SELECT list. Names must be columns of Table.
	Columns []string
}

// NewCompiler creates a Compiler selecting the given columns.
func NewCompiler(columns ...string) *Compiler {
	return &Compiler{Columns: columns}
}

// Compile converts q to SQL. The query is validated first.
func (c *Compiler) Compile(q queryir.Select) (string, []any, error) {
	if len(c.Columns) == 0 {
		return "", nil, errors.New("compiler has no columns")
	}
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(c.Columns, ", "), Table)

	var params []any
	if q.Filter != nil {
		where, whereParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, errors.Wrap(err, "compile filter")
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = whereParams
	}

	b.WriteString(" ORDER BY key COLLATE BINARY ASC")

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return b.String(), params, nil
}

func (c *Compiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		value, err := queryir.NormalizeValue(pred)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s = ?", pred.Field), []any{value}, nil
	case queryir.HasReactant:
		// Keys are "+"-joined, so padding both sides makes every part
		// delimited and the match exact.
		needle := "+" + string(pred.ID.Normalize()) + "+"
		return "instr('+' || key || '+', ?) > 0", []any{needle}, nil
	case queryir.Requires:
		id := string(ir.Identifier(pred.Apparatus).Normalize())
		return "EXISTS (SELECT 1 FROM json_each(requires_ids) WHERE json_each.value = ?)", []any{id}, nil
	case queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	default:
		return "", nil, errors.Newf("unsupported predicate type: %T", p)
	}
}

func (c *Compiler) compileJunction(preds []queryir.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}
	parts := make([]string, 0, len(preds))
	var params []any
	for _, pred := range preds {
		sql, p, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}
	return "(" + strings.Join(parts, sep) + ")", params, nil
}
