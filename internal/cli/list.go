package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mixlab/internal/config"
	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/loader"
	"github.com/roach88/mixlab/internal/queryir"
	"github.com/roach88/mixlab/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Table    string
	Types    []string
	With     []string
	Requires []string
	Arity    int
	Limit    int
}

// ListEntry is one matched table entry.
type ListEntry struct {
	Key    string      `json:"key"`
	Record ir.Reaction `json:"record"`
}

// ListResult is the payload of the list command.
type ListResult struct {
	Count   int         `json:"count"`
	Entries []ListEntry `json:"entries"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List table entries matching a filter",
		Long: `List the entries of a built table, optionally filtered.

Filters combine with AND. Repeated --type values combine with OR.
Snapshots (.db) are filtered in SQLite after their digest is verified;
JSON tables are filtered in memory.

Examples:
  mixlab list --table lab.db --type precipitation
  mixlab list --table reactions.json --with NaOH --requires stirrer
  mixlab list --table lab.db --arity 3 --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, config.KeyTable, "", "built table (.json or .db)")
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "reaction type (repeatable)")
	cmd.Flags().StringSliceVar(&opts.With, "with", nil, "substance the combination must include (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Requires, "requires", nil, "apparatus the record must require (repeatable)")
	cmd.Flags().IntVar(&opts.Arity, "arity", 0, "number of substances (2 or 3)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to print (0 for all)")

	return cmd
}

// listQuery translates flags into a filter.
func listQuery(opts *ListOptions, cmd *cobra.Command) queryir.Select {
	var preds []queryir.Predicate
	if len(opts.Types) > 0 {
		var anyType []queryir.Predicate
		for _, t := range opts.Types {
			anyType = append(anyType, queryir.Equals{Field: queryir.FieldType, Value: t})
		}
		preds = append(preds, queryir.Or{Predicates: anyType})
	}
	for _, id := range opts.With {
		preds = append(preds, queryir.HasReactant{ID: ir.Identifier(id)})
	}
	for _, a := range opts.Requires {
		preds = append(preds, queryir.Requires{Apparatus: a})
	}
	if cmd.Flags().Changed("arity") {
		preds = append(preds, queryir.Equals{Field: queryir.FieldArity, Value: opts.Arity})
	}

	q := queryir.Select{Limit: opts.Limit}
	if len(preds) > 0 {
		q.Filter = queryir.And{Predicates: preds}
	}
	return q
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.settings(cmd, config.KeyTable)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	q := listQuery(opts, cmd)
	if err := queryir.Validate(q).Err(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalid, err)
	}
	opts.logger().Debugw("listing table", "table", cfg.Table, "limit", q.Limit)

	rows, err := queryTableFile(cmd.Context(), cfg.Table, q)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err)
	}

	result := ListResult{Count: len(rows), Entries: make([]ListEntry, 0, len(rows))}
	for _, row := range rows {
		result.Entries = append(result.Entries, ListEntry{Key: row.Key.String(), Record: row.Reaction})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputListText(formatter, result)
	return nil
}

// queryTableFile filters a table written by writeTableFile.
func queryTableFile(ctx context.Context, path string, q queryir.Select) ([]queryir.Row, error) {
	if isSnapshotPath(path) {
		return store.QueryFile(ctx, path, q)
	}
	t, err := loader.ReadTable(path)
	if err != nil {
		return nil, err
	}
	return queryir.Filter(q, t), nil
}

func outputListText(formatter *OutputFormatter, result ListResult) {
	w := formatter.Writer
	for _, e := range result.Entries {
		line := fmt.Sprintf("%s  %s", e.Key, e.Record.Type)
		if e.Record.Product != nil {
			line += "  → " + *e.Record.Product
		}
		fmt.Fprintf(w, "%s%s\n", line, e.Record.RequirementHint())
	}
	noun := "entries"
	if result.Count == 1 {
		noun = "entry"
	}
	fmt.Fprintf(w, "%d %s\n", result.Count, noun)
}
