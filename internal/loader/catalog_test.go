package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mixlab/internal/ir"
)

func TestSubstanceIdentifierPrecedence(t *testing.T) {
	tests := []struct {
		name string
		s    Substance
		want ir.Identifier
	}{
		{"formula first", Substance{ID: "hcl", Name: "Hydrochloric acid", Formula: "HCl"}, "HCl"},
		{"id when no formula", Substance{ID: "litmus", Name: "Litmus"}, "litmus"},
		{"name last", Substance{Name: " Phenolphthalein "}, "Phenolphthalein"},
		{"blank formula skipped", Substance{Formula: "  ", ID: "x"}, "x"},
		{"nothing", Substance{Type: "acid"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.Identifier())
		})
	}
}

func TestLoadCatalogIdentifiers(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join("testdata", "catalog.json"))
	require.NoError(t, err)
	require.Len(t, cat.Chemicals, 6)
	assert.Equal(t,
		[]ir.Identifier{"HCl", "NaOH", "litmus", "Phenolphthalein"},
		cat.Identifiers())
}

func TestLoadCatalogFormatsAgree(t *testing.T) {
	want := []ir.Identifier{"HCl", "NaOH", "litmus"}
	for _, name := range []string{"catalog.yaml", "catalog.cue"} {
		t.Run(name, func(t *testing.T) {
			cat, err := LoadCatalog(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, want, cat.Identifiers())
			assert.Equal(t, "base", cat.Chemicals[1].Type)
		})
	}
}

func TestNilCatalog(t *testing.T) {
	var cat *Catalog
	assert.Nil(t, cat.Identifiers())
}
