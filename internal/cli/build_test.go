package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/loader"
	"github.com/roach88/mixlab/internal/store"
)

func TestBuildCommandJSONTable(t *testing.T) {
	dir, catalog, rules := writeInputs(t)
	output := filepath.Join(dir, "out", "table.json")

	out, err := execute(t, "build", "--catalog", catalog, "--rules", rules, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Built 4 entries (2 authored, 2 generated)")
	assert.Contains(t, out, "pairs: 3, triples: 1")
	assert.Contains(t, out, "Wrote "+output)

	table, err := loader.ReadTable(output)
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())
	rec, ok := table.Lookup(ir.ParseKey("HCl+CuSO4"))
	require.True(t, ok)
	assert.Equal(t, ir.TypeUnknown, rec.Type)
}

func TestBuildCommandSnapshot(t *testing.T) {
	dir, catalog, rules := writeInputs(t)
	output := filepath.Join(dir, "lab.db")

	_, err := execute(t, "build", "--catalog", catalog, "--rules", rules, "--output", output)
	require.NoError(t, err)

	snap, err := store.Import(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Meta.Entries)
	assert.Equal(t, ir.MustTableDigest(snap.Table), snap.Meta.Digest)
}

func TestBuildCommandJSONOutput(t *testing.T) {
	dir, catalog, rules := writeInputs(t)

	out, err := execute(t, "--format", "json", "build", "--catalog", catalog, "--rules", rules,
		"--output", filepath.Join(dir, "table.json"))
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   BuildResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, resp.Data.Stats.Total)
	assert.Equal(t, 2, resp.Data.Stats.Generated)
	assert.Equal(t, 2, resp.Data.ByType["unknown"])
	assert.Len(t, resp.Data.Digest, 64)
}

func TestBuildCommandEnvironment(t *testing.T) {
	dir, catalog, rules := writeInputs(t)
	output := filepath.Join(dir, "env.json")
	t.Setenv("MIXLAB_CATALOG", catalog)
	t.Setenv("MIXLAB_RULES", rules)
	t.Setenv("MIXLAB_OUTPUT", output)

	_, err := execute(t, "build")
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestBuildCommandMissingInputs(t *testing.T) {
	out, err := execute(t, "build", "--catalog", "chemicals.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "both --catalog and --rules are required")
}

func TestBuildCommandCatalogNotFound(t *testing.T) {
	dir, _, rules := writeInputs(t)

	out, err := execute(t, "build", "--catalog", filepath.Join(dir, "gone.json"), "--rules", rules,
		"--output", filepath.Join(dir, "table.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}

func TestBuildCommandValidationFailure(t *testing.T) {
	dir, catalog, _ := writeInputs(t)
	rules := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(rules, []byte(`{
  "HCl+NaOH": {"product": null, "color": "blue", "type": "neutralization", "heat": null, "observations": ["x"], "requires": []}
}`), 0644))
	output := filepath.Join(dir, "table.json")

	out, err := execute(t, "build", "--catalog", catalog, "--rules", rules, "--output", output)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "[E205] HCl+NaOH.color")
	assert.NoFileExists(t, output)
}

func TestBuildCommandKeepsBackup(t *testing.T) {
	dir, catalog, rules := writeInputs(t)
	output := filepath.Join(dir, "table.json")

	for i := 0; i < 2; i++ {
		_, err := execute(t, "build", "--catalog", catalog, "--rules", rules, "--output", output)
		require.NoError(t, err)
	}
	assert.FileExists(t, output+loader.BackupSuffix)
}
