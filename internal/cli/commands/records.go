package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/catalognav/internal/cli/output"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/spf13/cobra"
)

// RecordsOptions holds options for the records command.
type RecordsOptions struct {
	LinkName string
	LinkRow  string
	Format   string // Output format: table, json, csv, md, yaml
}

// NewRecordsCommand creates the records command.
func NewRecordsCommand() *cobra.Command {
	opts := &RecordsOptions{}

	cmd := &cobra.Command{
		Use:     "records <database> <table>",
		Aliases: []string{"rows"},
		Short:   "Show the records of a table",
		Long: `Show the records of a table as returned by the extraction tool.

Link columns are listed first and named <link>. To show the records related
to one row through a link, pass both --link-name and --link-row; the result
then describes the related table.

Records are read from the extraction tool on every call.`,
		Example: `  # Show all students
  catalognav records school students

  # Show the events owned by person row 12
  catalognav records campus person --link-name events --link-row 12

  # Export as CSV
  catalognav records school students --format csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.LinkName, "link-name", "", "Follow this link of the table")
	cmd.Flags().StringVar(&opts.LinkRow, "link-row", "", "Row identifier the link is followed from")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md, yaml")

	return cmd
}

func runRecords(cmd *cobra.Command, dbArg, tableArg string, opts *RecordsOptions) error {
	if (opts.LinkName == "") != (opts.LinkRow == "") {
		return fmt.Errorf("--link-name and --link-row must be used together")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = showRecords(cmd.Context(), cmdCtx, dbArg, tableArg, opts)
	return err
}

// showRecords fetches and renders the view selected by the arguments. A
// table without columns is reported as information and yields a nil view.
func showRecords(ctx context.Context, cmdCtx *CommandContext, dbArg, tableArg string, opts *RecordsOptions) (*core.TableView, error) {
	_, db, err := resolveDatabase(ctx, cmdCtx.Cache, dbArg)
	if err != nil {
		return nil, err
	}
	_, table, err := resolveTable(db, tableArg)
	if err != nil {
		return nil, err
	}

	link := core.Link{
		Database: db.Name,
		Table:    table.Name,
		LinkName: opts.LinkName,
		LinkRow:  opts.LinkRow,
	}
	view, err := cmdCtx.Fetcher.GetTableData(ctx, link)
	if err != nil {
		if errors.Is(err, tabledata.ErrNoColumns) {
			cmdCtx.Renderer.Info(err.Error())
			return nil, nil
		}
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = formatForMode(cmdCtx.Renderer.EffectiveMode())
	}
	return view, renderView(cmdCtx.Renderer, view, format)
}

// formatForMode maps the global output mode to a records format.
func formatForMode(mode output.Mode) string {
	switch mode {
	case output.ModeJSON:
		return "json"
	case output.ModeYAML:
		return "yaml"
	case output.ModeMarkdown:
		return "md"
	default:
		return "table"
	}
}
