// Package testutil holds shared fixtures and deterministic helpers for
// mixlab tests.
package testutil

import (
	"github.com/roach88/mixlab/internal/compiler"
	"github.com/roach88/mixlab/internal/ir"
)

// Catalog returns a small substance catalog.
func Catalog() []ir.Identifier {
	return []ir.Identifier{"HCl", "NaOH", "CuSO4", "Litmus"}
}

// Neutralization is the authored HCl + NaOH record.
func Neutralization() ir.Reaction {
	return ir.Reaction{
		Product:      ir.Str("NaCl + H2O"),
		Color:        ir.Str("#ffffff"),
		Type:         ir.TypeNeutralization,
		Heat:         ir.Str("exothermic"),
		Observations: []string{"Solution warms slightly"},
		Requires:     []string{},
	}
}

// Precipitation is the authored CuSO4 + NaOH record; it needs a stirrer.
func Precipitation() ir.Reaction {
	return ir.Reaction{
		Product:         ir.Str("Cu(OH)2 + Na2SO4"),
		Color:           ir.Str("#0099cc"),
		Type:            ir.TypePrecipitation,
		Observations:    []string{"Blue precipitate forms"},
		Requires:        []string{ir.ApparatusStirrer},
		DurationSeconds: ir.Int(5),
	}
}

// Dissolution is an endothermic record bounded to 40–90 °C.
func Dissolution() ir.Reaction {
	return ir.Reaction{
		Product:      ir.Str("CuCl2 (aq)"),
		Color:        ir.Str("#33cc99"),
		Type:         ir.TypeRedox,
		Heat:         ir.Str("endothermic"),
		Observations: []string{"Solution turns green on heating"},
		Requires:     []string{},
		MinTemp:      ir.Int(40),
		MaxTemp:      ir.Int(90),
	}
}

// Indicator is the authored HCl + Litmus record.
func Indicator() ir.Reaction {
	return ir.Reaction{
		Color:        ir.Str("#ff0000"),
		Type:         ir.TypeIndicator,
		Observations: []string{"Litmus turns red"},
		Requires:     []string{},
	}
}

// Rules returns authored rules with inconsistent key spelling.
func Rules() ir.RuleSet {
	return ir.RuleSet{
		{RawKey: "NaOH+HCl", Reaction: Neutralization()},
		{RawKey: "CuSO4+NaOH", Reaction: Precipitation()},
		{RawKey: "hcl+cuso4", Reaction: Dissolution()},
		{RawKey: "Litmus + HCl", Reaction: Indicator()},
	}
}

// Table builds the fixture table over Catalog and Rules.
func Table() *ir.Table {
	t, _ := compiler.Build(Catalog(), Rules())
	return t
}
