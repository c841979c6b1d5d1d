package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCatalog = `{"chemicals": [
  {"id": "hcl", "name": "Hydrochloric acid", "formula": "HCl", "type": "acid"},
  {"id": "naoh", "name": "Sodium hydroxide", "formula": "NaOH", "type": "base"},
  {"id": "cuso4", "name": "Copper sulfate", "formula": "CuSO4", "type": "salt"}
]}`

const testRules = `{
  "NaOH+HCl": {"product": "NaCl + H2O", "color": "#ffffff", "type": "neutralization", "heat": "exothermic", "observations": ["Solution warms"], "requires": []},
  "CuSO4+NaOH": {"product": "Cu(OH)2 + Na2SO4", "color": "#0099cc", "type": "precipitation", "heat": null, "observations": ["Blue precipitate forms"], "requires": ["stirrer"]}
}`

// writeInputs writes the test catalog and rules into a temp directory.
func writeInputs(t *testing.T) (dir, catalog, rules string) {
	t.Helper()
	dir = t.TempDir()
	catalog = filepath.Join(dir, "chemicals.json")
	rules = filepath.Join(dir, "reactions.json")
	require.NoError(t, os.WriteFile(catalog, []byte(testCatalog), 0644))
	require.NoError(t, os.WriteFile(rules, []byte(testRules), 0644))
	return dir, catalog, rules
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// buildTable builds the test inputs into output and fails the test on error.
func buildTable(t *testing.T, output string) {
	t.Helper()
	_, catalog, rules := writeInputs(t)
	_, err := execute(t, "build", "--catalog", catalog, "--rules", rules, "--output", output)
	require.NoError(t, err)
}
