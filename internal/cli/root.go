package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/roach88/mixlab/internal/config"
	"github.com/roach88/mixlab/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Set by the root command before a subcommand runs. Commands built
	// directly in tests fall back to defaults.
	Config *viper.Viper
	Logger *zap.SugaredLogger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mixlab CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mixlab",
		Short: "mixlab - reaction rule tables for a virtual chemistry lab",
		Long: `Build, audit and query the reaction table of a virtual chemistry lab.

Every 2- and 3-substance combination of the catalog resolves to exactly one
reaction record: the authored one when it exists, a placeholder otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.init()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json or toml)")

	// Add subcommands
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// init loads configuration and builds the logger.
func (o *RootOptions) init() error {
	v := config.New()
	if err := config.ReadFile(v, o.ConfigFile); err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	log, err := logger.New(o.Verbose, v.GetString(config.KeyLogLevel))
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring logger", err)
	}
	o.Config = v
	o.Logger = log
	return nil
}

func (o *RootOptions) viper() *viper.Viper {
	if o.Config == nil {
		o.Config = config.New()
	}
	return o.Config
}

func (o *RootOptions) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}

// settings binds the named flags of cmd to their config keys and returns
// the resolved configuration. Flags win over environment, environment over
// the config file.
func (o *RootOptions) settings(cmd *cobra.Command, keys ...string) (*config.Config, error) {
	v := o.viper()
	for _, key := range keys {
		if f := cmd.Flags().Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	return config.Load(v)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
