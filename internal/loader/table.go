package loader

import (
	"bytes"

	json "github.com/goccy/go-json"

	"github.com/roach88/mixlab/internal/ir"
)

// EncodeTable renders a table as a JSON object keyed by canonical key,
// sorted, with 2-space indentation and a trailing newline.
func EncodeTable(t *ir.Table) ([]byte, error) {
	doc := make(map[string]ir.Reaction, t.Len())
	t.Each(func(k ir.Key, r ir.Reaction) bool {
		doc[k.String()] = r
		return true
	})

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTable persists a table atomically.
func WriteTable(path string, t *ir.Table) error {
	data, err := EncodeTable(t)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0o644)
}

// ReadTable reads a persisted table. Keys are canonicalized again so a
// hand-edited document still loads; on collision the later entry wins.
func ReadTable(path string) (*ir.Table, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTable(path, data)
}

// ReadTableRules reads a persisted table without canonicalizing its keys,
// so hand edits that collide or drift from canonical form stay visible.
func ReadTableRules(path string) (ir.RuleSet, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRules(path, data, FormatJSON)
}

// DecodeTable decodes a persisted JSON table.
func DecodeTable(path string, data []byte) (*ir.Table, error) {
	rules, err := DecodeRules(path, data, FormatJSON)
	if err != nil {
		return nil, err
	}
	entries := make(map[ir.Key]ir.Reaction, len(rules))
	for _, rule := range rules {
		entries[ir.ParseKey(rule.RawKey)] = rule.Reaction
	}
	return ir.NewTable(entries), nil
}
