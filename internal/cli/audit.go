package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mixlab/internal/audit"
	"github.com/roach88/mixlab/internal/compiler"
	"github.com/roach88/mixlab/internal/loader"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Table bool // argument is a built table rather than authored rules
}

// AuditResult is the payload of the audit command.
type AuditResult struct {
	Clean      bool                       `json:"clean"`
	Report     *audit.Report              `json:"report"`
	Validation []compiler.ValidationError `json:"validation,omitempty"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit <rules-file>",
		Short: "Report key defects and invalid records",
		Long: `Audit the keys of an authored rules document.

Reports keys with empty components, unbalanced parentheses, keys that
collapse to the same combination and keys that are not upper-case. Each
record is validated as well. With --table the argument is a built table
(.json or .db) and only its keys are audited. JSON tables are audited
as written, before any key is canonicalized.

Exit codes:
  0 - No defects
  1 - Defects found
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Table, "table", false, "audit a built table instead of authored rules")

	return cmd
}

func runAudit(opts *AuditOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var result AuditResult
	if opts.Table {
		report, err := auditTableFile(cmd.Context(), path)
		if err != nil {
			return formatter.Fail(ExitCommandError, loadErrorCode(err), err)
		}
		result.Report = report
	} else {
		rules, err := loader.LoadRules(path)
		if err != nil {
			return formatter.Fail(ExitCommandError, loadErrorCode(err), err)
		}
		result.Report = audit.AuditRules(rules)
		result.Validation = compiler.Validate(rules)
	}
	result.Clean = result.Report.Clean() && len(result.Validation) == 0
	formatter.VerboseLog("Audited %d key(s) in %s", result.Report.Total, path)

	if formatter.JSON() {
		var cliErr *CLIError
		if !result.Clean {
			cliErr = &CLIError{Code: ErrCodeNotClean, Message: "audit found defects"}
		}
		if err := formatter.Respond(result, cliErr); err != nil {
			return err
		}
	} else {
		if err := result.Report.WriteText(formatter.Writer); err != nil {
			return err
		}
		if len(result.Validation) > 0 {
			fmt.Fprintf(formatter.Writer, "\nInvalid records: %d\n", len(result.Validation))
			for _, e := range result.Validation {
				fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
			}
		}
	}

	if !result.Clean {
		return NewExitError(ExitFailure, "audit found defects")
	}
	return nil
}

// auditTableFile audits the stored keys of a built table. Snapshot keys are
// canonical on write; JSON tables may carry hand edits.
func auditTableFile(ctx context.Context, path string) (*audit.Report, error) {
	if isSnapshotPath(path) {
		t, err := readTableFile(ctx, path)
		if err != nil {
			return nil, err
		}
		return audit.AuditTable(t), nil
	}
	rules, err := loader.ReadTableRules(path)
	if err != nil {
		return nil, err
	}
	return audit.AuditRules(rules), nil
}
