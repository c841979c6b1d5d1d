package loader

import (
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mixlab/internal/ir"
)

// Substance is one entry of the catalog document.
type Substance struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Formula string `json:"formula,omitempty" yaml:"formula,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Identifier returns the first non-empty of formula, id and name.
func (s Substance) Identifier() ir.Identifier {
	for _, v := range []string{s.Formula, s.ID, s.Name} {
		if v = strings.TrimSpace(v); v != "" {
			return ir.Identifier(v)
		}
	}
	return ""
}

// Catalog is the ordered list of known substances.
type Catalog struct {
	Chemicals []Substance `json:"chemicals" yaml:"chemicals"`
}

// Identifiers returns the catalog identifiers in document order.
// Entries without any identifier are skipped and repeats collapse by
// identity, keeping the first spelling.
func (c *Catalog) Identifiers() []ir.Identifier {
	if c == nil {
		return nil
	}
	seen := make(map[ir.Identifier]bool, len(c.Chemicals))
	ids := make([]ir.Identifier, 0, len(c.Chemicals))
	for _, s := range c.Chemicals {
		id := s.Identifier()
		if id.IsEmpty() || seen[id.Normalize()] {
			continue
		}
		seen[id.Normalize()] = true
		ids = append(ids, id)
	}
	return ids
}

// LoadCatalog reads a catalog document in JSON, YAML or CUE.
func LoadCatalog(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeCatalog(path, data, format)
}

// DecodeCatalog decodes a catalog document from data.
func DecodeCatalog(path string, data []byte, format Format) (*Catalog, error) {
	var cat Catalog
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, &LoadError{Path: path, Message: err.Error()}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, &LoadError{Path: path, Message: err.Error()}
		}
	case FormatCUE:
		v, err := compileCUE(path, data)
		if err != nil {
			return nil, err
		}
		chemicals, ok, err := concreteField(path, v, "chemicals")
		if err != nil {
			return nil, err
		}
		if ok {
			if err := chemicals.Decode(&cat.Chemicals); err != nil {
				return nil, formatCUEError(path, err)
			}
		}
	default:
		return nil, &LoadError{Path: path, Message: ErrUnsupportedFormat.Error()}
	}
	return &cat, nil
}
