package loader

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mixlab/internal/ir"
)

// LoadRules reads an authored rule document. Entries are returned in
// document order, which decides precedence on canonical collisions.
func LoadRules(path string) (ir.RuleSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRules(path, data, format)
}

// DecodeRules decodes authored rules from data. path is only used in
// error messages and CUE positions.
func DecodeRules(path string, data []byte, format Format) (ir.RuleSet, error) {
	var (
		rules ir.RuleSet
		err   error
	)
	switch format {
	case FormatJSON:
		rules, err = decodeRulesJSON(path, data)
	case FormatYAML:
		rules, err = decodeRulesYAML(path, data)
	case FormatCUE:
		rules, err = decodeRulesCUE(path, data)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
	if err != nil {
		return nil, err
	}
	for i := range rules {
		NormalizeRecord(&rules[i].Reaction)
	}
	return rules, nil
}

func decodeRulesJSON(path string, data []byte) (ir.RuleSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return ir.RuleSet{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err == io.EOF {
		return ir.RuleSet{}, nil
	}
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &LoadError{Path: path, Message: "rule document must be a JSON object"}
	}

	rules := ir.RuleSet{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &LoadError{Path: path, Message: err.Error()}
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &LoadError{Path: path, Message: "expected object key"}
		}
		var r ir.Reaction
		if err := dec.Decode(&r); err != nil {
			return nil, &LoadError{Path: path, Message: errors.Wrapf(err, "rule %q", key).Error()}
		}
		rules = append(rules, ir.AuthoredRule{RawKey: key, Reaction: r})
	}
	if _, err := dec.Token(); err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	return rules, nil
}

func decodeRulesYAML(path string, data []byte) (ir.RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return ir.RuleSet{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Path: path, Message: "rule document must be a YAML mapping"}
	}

	rules := make(ir.RuleSet, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		var r ir.Reaction
		if err := valNode.Decode(&r); err != nil {
			return nil, &LoadError{
				Path:    path,
				Message: errors.Wrapf(err, "line %d: rule %q", keyNode.Line, keyNode.Value).Error(),
			}
		}
		rules = append(rules, ir.AuthoredRule{RawKey: keyNode.Value, Reaction: r})
	}
	return rules, nil
}

func decodeRulesCUE(path string, data []byte) (ir.RuleSet, error) {
	v, err := compileCUE(path, data)
	if err != nil {
		return nil, err
	}
	reactions, ok, err := concreteField(path, v, "reactions")
	if err != nil {
		return nil, err
	}
	if !ok {
		return ir.RuleSet{}, nil
	}

	iter, err := reactions.Fields()
	if err != nil {
		return nil, formatCUEError(path, err)
	}
	rules := ir.RuleSet{}
	for iter.Next() {
		var r ir.Reaction
		if err := iter.Value().Decode(&r); err != nil {
			return nil, formatCUEError(path, err)
		}
		rules = append(rules, ir.AuthoredRule{RawKey: iter.Selector().Unquoted(), Reaction: r})
	}
	return rules, nil
}

// NormalizeRecord applies the decoding conventions shared by all formats:
// legacy type spellings are normalized and a missing requires list
// becomes empty.
func NormalizeRecord(r *ir.Reaction) {
	r.Type = ir.ParseReactionType(string(r.Type))
	if r.Requires == nil {
		r.Requires = []string{}
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}
