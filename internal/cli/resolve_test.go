package cli

import (
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mixlab/internal/resolve"
)

func TestResolveCommandResolved(t *testing.T) {
	table := filepath.Join(t.TempDir(), "table.json")
	buildTable(t, table)

	out, err := execute(t, "resolve", "--table", table, "NaOH", "HCl")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ HCL+NAOH: neutralization")
	assert.Contains(t, out, "NaOH + HCl → NaCl + H2O")
	assert.Contains(t, out, "color: #ffffff")
	assert.Contains(t, out, "- Solution warms")
}

func TestResolveCommandBlocked(t *testing.T) {
	table := filepath.Join(t.TempDir(), "table.json")
	buildTable(t, table)

	out, err := execute(t, "resolve", "--table", table, "CuSO4", "NaOH")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Blocked: CUSO4+NAOH (Requirements: stirrer required)")
	assert.Contains(t, out, "missing apparatus: stirrer")

	out, err = execute(t, "resolve", "--table", table, "--apparatus", "Stirrer", "CuSO4", "NaOH")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ CUSO4+NAOH: precipitation")
}

func TestResolveCommandNotFound(t *testing.T) {
	table := filepath.Join(t.TempDir(), "table.json")
	buildTable(t, table)

	out, err := execute(t, "resolve", "--table", table, "NaOH", "KCl")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ No rule for KCL+NAOH")
	assert.Contains(t, out, "KCl: did you mean HCL?")
	assert.NotContains(t, out, "NaOH:")
}

func TestResolveCommandSnapshotJSON(t *testing.T) {
	table := filepath.Join(t.TempDir(), "lab.db")
	buildTable(t, table)

	out, err := execute(t, "--format", "json", "resolve", "--table", table, "HCl", "NaOH", "CuSO4")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Outcome struct {
				Kind string `json:"kind"`
				Key  string `json:"key"`
			} `json:"outcome"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, string(resolve.KindResolved), resp.Data.Outcome.Kind)
	assert.Equal(t, "CUSO4+HCL+NAOH", resp.Data.Outcome.Key)
}

func TestResolveCommandInvalidReactants(t *testing.T) {
	table := filepath.Join(t.TempDir(), "table.json")
	buildTable(t, table)

	out, err := execute(t, "resolve", "--table", table, "HCl", "hcl")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeInvalid+"]")
	assert.Contains(t, out, "appears more than once")
}

func TestResolveCommandArgCount(t *testing.T) {
	_, err := execute(t, "resolve", "--table", "table.json", "HCl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts between 2 and 3 arg")
}

func TestResolveCommandMissingTable(t *testing.T) {
	out, err := execute(t, "resolve", "--table", filepath.Join(t.TempDir(), "gone.json"), "HCl", "NaOH")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}
