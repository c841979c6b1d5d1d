package cli

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/mixlab/internal/config"
	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/resolve"
	"github.com/roach88/mixlab/internal/suggest"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Table       string
	Apparatus   []string
	Temperature int64
}

// ResolveResult is the payload of the resolve command.
type ResolveResult struct {
	Outcome     resolve.Outcome     `json:"outcome"`
	Equation    string              `json:"equation,omitempty"`
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve ID ID [ID]",
		Short: "Look up the reaction for two or three substances",
		Long: `Look up the reaction for two or three substances in a built table.

The order of the substances does not matter. A reaction whose apparatus or
temperature requirements are not met is reported as blocked.

Exit codes:
  0 - Reaction resolved
  1 - Reaction blocked by missing prerequisites
  2 - Command error, invalid substances or combination missing from the table

Examples:
  mixlab resolve --table reactions.json NaOH HCl
  mixlab resolve --table lab.db --apparatus stirrer CuSO4 NaOH
  mixlab resolve --table lab.db --apparatus burner --temperature 60 HCl CuSO4`,
		Args:          cobra.RangeArgs(resolve.MinReactants, resolve.MaxReactants),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, config.KeyTable, "", "built table (.json or .db)")
	cmd.Flags().StringSliceVarP(&opts.Apparatus, "apparatus", "a", nil, "apparatus present (comma separated)")
	cmd.Flags().Int64VarP(&opts.Temperature, "temperature", "t", 0, "vessel temperature in °C")

	return cmd
}

func runResolve(opts *ResolveOptions, reactants []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.settings(cmd, config.KeyTable)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	table, err := readTableFile(cmd.Context(), cfg.Table)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err)
	}
	formatter.VerboseLog("Loaded %d entries from %s", table.Len(), cfg.Table)

	var attempt []resolve.AttemptOption
	if cmd.Flags().Changed("temperature") {
		attempt = append(attempt, resolve.AtTemperature(opts.Temperature))
	}

	resolver := resolve.New(table, resolve.WithLogger(opts.logger()))
	out, err := resolver.Resolve(reactants, opts.Apparatus, attempt...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalid, err)
	}

	result := ResolveResult{Outcome: out}
	if out.Record != nil {
		result.Equation = ir.FormatEquation(reactants, out.Record.Product)
	}
	if out.IsNotFound() {
		result.Suggestions = suggest.New(table.Identifiers(), suggest.DefaultCacheSize).ForReactants(reactants)
	}

	if formatter.JSON() {
		if err := formatter.Respond(result, outcomeError(out)); err != nil {
			return err
		}
	} else {
		outputResolveText(formatter, reactants, result)
	}

	switch out.Kind {
	case resolve.KindBlocked:
		return NewExitError(ExitFailure, "reaction blocked")
	case resolve.KindNotFound:
		return WrapExitError(ExitCommandError, ErrCodeNoRule,
			errors.Newf("no rule for %s", out.Key))
	}
	return nil
}

func outcomeError(out resolve.Outcome) *CLIError {
	switch out.Kind {
	case resolve.KindBlocked:
		return &CLIError{Code: ErrCodeBlocked, Message: "reaction blocked", Details: out.Missing}
	case resolve.KindNotFound:
		return &CLIError{Code: ErrCodeNoRule, Message: fmt.Sprintf("no rule for %s", out.Key)}
	}
	return nil
}

func outputResolveText(formatter *OutputFormatter, reactants []string, result ResolveResult) {
	w := formatter.Writer
	out := result.Outcome

	if out.IsNotFound() {
		fmt.Fprintf(w, "✗ No rule for %s\n", out.Key)
		for _, r := range reactants {
			names, ok := result.Suggestions[strings.TrimSpace(r)]
			if !ok {
				continue
			}
			if len(names) == 0 {
				fmt.Fprintf(w, "  %s: unknown substance\n", strings.TrimSpace(r))
				continue
			}
			fmt.Fprintf(w, "  %s: did you mean %s?\n", strings.TrimSpace(r), strings.Join(names, ", "))
		}
		return
	}

	rec := out.Record
	if out.IsBlocked() {
		fmt.Fprintf(w, "✗ Blocked: %s%s\n", out.Key, rec.RequirementHint())
		if len(out.Missing) > 0 {
			fmt.Fprintf(w, "  missing apparatus: %s\n", strings.Join(out.Missing, ", "))
		}
		if v := out.Temperature; v != nil {
			fmt.Fprintf(w, "  temperature %d°C is out of range\n", v.Actual)
		}
		return
	}

	fmt.Fprintf(w, "✓ %s: %s\n", out.Key, rec.Type)
	if result.Equation != "" {
		fmt.Fprintf(w, "  %s\n", result.Equation)
	}
	if rec.Color != nil {
		fmt.Fprintf(w, "  color: %s\n", *rec.Color)
	}
	if rec.Heat != nil {
		fmt.Fprintf(w, "  heat: %s\n", *rec.Heat)
	}
	for _, o := range rec.Observations {
		fmt.Fprintf(w, "  - %s\n", o)
	}
}
