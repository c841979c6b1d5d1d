package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mixlab/internal/ir"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/precipitation.yaml")
	require.NoError(t, err)

	assert.Equal(t, "precipitation", scenario.Name)
	assert.Equal(t, []string{"HCl", "NaOH", "CuSO4"}, scenario.Catalog)
	require.Len(t, scenario.Rules, 2)
	assert.Equal(t, "CuSO4+NaOH", scenario.Rules[0].Key)
	assert.Equal(t, ir.TypePrecipitation, scenario.Rules[0].Record.Type)
	assert.Nil(t, scenario.Rules[0].Record.Heat)
	assert.Len(t, scenario.Steps, 5)
	assert.Equal(t, []string{"stirrer"}, scenario.Steps[1].Apparatus)
	assert.Len(t, scenario.Assertions, 4)
}

func TestLoadScenario_Temperature(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/heating.yaml")
	require.NoError(t, err)

	assert.Nil(t, scenario.Steps[0].Temperature)
	require.NotNil(t, scenario.Steps[1].Temperature)
	assert.Equal(t, int64(20), *scenario.Steps[1].Temperature)
	assert.Equal(t, int64(40), *scenario.Rules[0].Record.MinTemp)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_RelativeFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chemicals.json"), []byte(`{"chemicals":[]}`), 0644))
	path := writeScenario(t, dir, `
name: files
description: "relative catalog"
catalog_file: chemicals.json
steps:
  - mix: [A, B]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chemicals.json"), scenario.CatalogFile)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing name",
			content: "description: x\nsteps:\n  - mix: [A, B]\n",
			errMsg:  "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nsteps:\n  - mix: [A, B]\n",
			errMsg:  "description is required",
		},
		{
			name:    "no steps",
			content: "name: x\ndescription: y\n",
			errMsg:  "steps list is required",
		},
		{
			name:    "empty mix",
			content: "name: x\ndescription: y\nsteps:\n  - apparatus: [stirrer]\n",
			errMsg:  "steps[0]: mix is required",
		},
		{
			name:    "unknown outcome",
			content: "name: x\ndescription: y\nsteps:\n  - mix: [A, B]\n    expect:\n      outcome: exploded\n",
			errMsg:  `unknown outcome "exploded"`,
		},
		{
			name:    "rule without key",
			content: "name: x\ndescription: y\nrules:\n  - record: {type: unknown}\nsteps:\n  - mix: [A, B]\n",
			errMsg:  "rules[0]: key is required",
		},
		{
			name:    "missing catalog file",
			content: "name: x\ndescription: y\ncatalog_file: gone.json\nsteps:\n  - mix: [A, B]\n",
			errMsg:  "file not found",
		},
		{
			name:    "unknown field",
			content: "name: x\ndescription: y\nstep:\n  - mix: [A, B]\n",
			errMsg:  "failed to parse YAML",
		},
		{
			name:    "unknown assertion",
			content: "name: x\ndescription: y\nsteps:\n  - mix: [A, B]\nassertions:\n  - type: final_state\n",
			errMsg:  `unknown assertion type "final_state"`,
		},
		{
			name:    "trace_contains without key",
			content: "name: x\ndescription: y\nsteps:\n  - mix: [A, B]\nassertions:\n  - type: trace_contains\n",
			errMsg:  "key is required for trace_contains",
		},
		{
			name:    "trace_order without outcomes",
			content: "name: x\ndescription: y\nsteps:\n  - mix: [A, B]\nassertions:\n  - type: trace_order\n",
			errMsg:  "outcomes list is required",
		},
		{
			name:    "trace_count without outcome",
			content: "name: x\ndescription: y\nsteps:\n  - mix: [A, B]\nassertions:\n  - type: trace_count\n    count: 1\n",
			errMsg:  "outcome is required for trace_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata/scenarios", "heating.yaml"),
		filepath.Join("testdata/scenarios", "precipitation.yaml"),
	}, files)
}

func TestFindScenarios_MissingDir(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
