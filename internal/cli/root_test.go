package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mixlab", cmd.Use)
	assert.Contains(t, cmd.Long, "reaction table")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"build", "audit", "resolve", "list", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestBuildCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	buildCmd, _, err := cmd.Find([]string{"build"})
	require.NoError(t, err)

	outputFlag := buildCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
	assert.NotNil(t, buildCmd.Flags().Lookup("watch"))
	assert.NotNil(t, buildCmd.Flags().Lookup("catalog"))
	assert.NotNil(t, buildCmd.Flags().Lookup("rules"))
}

func TestResolveCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	resolveCmd, _, err := cmd.Find([]string{"resolve"})
	require.NoError(t, err)

	tableFlag := resolveCmd.Flags().Lookup("table")
	require.NotNil(t, tableFlag)
	assert.Equal(t, "", tableFlag.DefValue)
	assert.Equal(t, "a", resolveCmd.Flags().Lookup("apparatus").Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "audit", "whatever.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("MIXLAB_LOG_LEVEL", "shouting")
	_, err := execute(t, "audit", "whatever.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "configuring logger")
}

func TestConfigFileSuppliesPaths(t *testing.T) {
	dir, catalog, rules := writeInputs(t)
	output := filepath.Join(dir, "table.json")
	cfgPath := filepath.Join(dir, "mixlab.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("catalog: "+catalog+"\nrules: "+rules+"\noutput: "+output+"\n"), 0644))

	_, err := execute(t, "--config", cfgPath, "build")
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "gone.yaml"), "build")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
