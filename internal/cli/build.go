package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/mixlab/internal/audit"
	"github.com/roach88/mixlab/internal/compiler"
	"github.com/roach88/mixlab/internal/config"
	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/loader"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Catalog  string
	Rules    string
	Output   string
	Watch    bool
	Debounce time.Duration
}

// BuildResult is the payload reported after a successful build.
type BuildResult struct {
	Output string              `json:"output"`
	Digest string              `json:"digest"`
	Stats  compiler.BuildStats `json:"stats"`
	ByType map[string]int      `json:"by_type"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the reaction table from a catalog and authored rules",
		Long: `Build the reaction table from a catalog and authored rules.

Authored records are validated first. The table holds every authored rule
plus a placeholder for each remaining pair and triple of catalog substances.
An output ending in .db is written as a SQLite snapshot, anything else as JSON.

Exit codes:
  0 - Table written
  1 - Authored records failed validation
  2 - Command error (missing input, write failure)

Examples:
  mixlab build --catalog chemicals.json --rules reactions.cue
  mixlab build --catalog chemicals.yaml --rules reactions.json --output lab.db
  mixlab build --catalog chemicals.json --rules reactions.cue --watch`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runBuild(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, config.KeyCatalog, "", "catalog document (json, yaml or cue)")
	cmd.Flags().StringVar(&opts.Rules, config.KeyRules, "", "authored rules document (json, yaml or cue)")
	cmd.Flags().StringVarP(&opts.Output, config.KeyOutput, "o", "", "output file (.json or .db)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "rebuild when an input changes")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 300*time.Millisecond, "quiet period before a rebuild")

	return cmd
}

func runBuild(ctx context.Context, opts *BuildOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.settings(cmd, config.KeyCatalog, config.KeyRules, config.KeyOutput)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	if cfg.Catalog == "" || cfg.Rules == "" {
		_ = formatter.Error(ErrCodeGeneric, "both --catalog and --rules are required", nil)
		return NewExitError(ExitCommandError, "both --catalog and --rules are required")
	}

	if !opts.Watch {
		return buildOnce(ctx, opts.RootOptions, cfg, formatter)
	}

	log := opts.logger()
	if err := buildOnce(ctx, opts.RootOptions, cfg, formatter); err != nil {
		log.Warnw("initial build failed", "error", err)
	}
	fmt.Fprintf(formatter.GetErrWriter(), "Watching %s and %s (Ctrl-C to stop)\n", cfg.Catalog, cfg.Rules)
	return watchInputs(ctx, []string{cfg.Catalog, cfg.Rules}, opts.Debounce, log, func() error {
		return buildOnce(ctx, opts.RootOptions, cfg, formatter)
	})
}

// buildOnce loads, validates, builds and writes the table.
func buildOnce(ctx context.Context, opts *RootOptions, cfg *config.Config, formatter *OutputFormatter) error {
	log := opts.logger()

	catalog, err := loader.LoadCatalog(cfg.Catalog)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err)
	}
	rules, err := loader.LoadRules(cfg.Rules)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err)
	}
	formatter.VerboseLog("Loaded %d substance(s) from %s", len(catalog.Chemicals), cfg.Catalog)
	formatter.VerboseLog("Loaded %d authored rule(s) from %s", len(rules), cfg.Rules)

	if verrs := compiler.Validate(rules); len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}

	if report := audit.AuditRules(rules); !report.Clean() {
		log.Warnw("authored keys need attention",
			"duplicates", len(report.DuplicateGroups),
			"empty_components", len(report.EmptyComponentKeys),
			"unbalanced", len(report.UnbalancedBracketKeys))
	}

	table, stats := compiler.Build(catalog.Identifiers(), rules, compiler.WithLogger(log))
	if err := writeTableFile(ctx, cfg.Output, table); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
	}

	result := BuildResult{
		Output: cfg.Output,
		Digest: ir.MustTableDigest(table),
		Stats:  stats,
		ByType: make(map[string]int),
	}
	for t, n := range table.CountByType() {
		result.ByType[string(t)] = n
	}
	log.Infow("table written", "output", cfg.Output, "entries", stats.Total)

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputBuildText(formatter, result)
}

func outputBuildText(formatter *OutputFormatter, result BuildResult) error {
	w := formatter.Writer
	s := result.Stats
	fmt.Fprintf(w, "✓ Built %d entries (%d authored, %d generated)\n", s.Total, s.Total-s.Generated, s.Generated)
	fmt.Fprintf(w, "  pairs: %d, triples: %d\n", s.Pairs, s.Triples)
	if s.Overridden > 0 || s.Skipped > 0 || s.Rejected > 0 {
		fmt.Fprintf(w, "  overridden: %d, skipped: %d, rejected: %d\n", s.Overridden, s.Skipped, s.Rejected)
	}
	fmt.Fprintf(w, "  digest: %s\n", result.Digest)
	fmt.Fprintf(w, "Wrote %s\n", result.Output)
	return nil
}

// outputValidationErrors reports record validation failures.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(errs))
	if formatter.JSON() {
		if err := formatter.Respond(ValidationResult{Valid: false, Errors: errs}, &CLIError{
			Code:    errs[0].Code,
			Message: msg,
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
	}
	return NewExitError(ExitFailure, msg)
}
