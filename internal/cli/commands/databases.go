package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/catalognav/internal/cli/output"
	"github.com/spf13/cobra"
)

// DatabasesOptions holds options for the databases command.
type DatabasesOptions struct {
	Refresh bool
}

// NewDatabasesCommand creates the databases command.
func NewDatabasesCommand() *cobra.Command {
	opts := &DatabasesOptions{}

	cmd := &cobra.Command{
		Use:     "databases",
		Aliases: []string{"dbs"},
		Short:   "List the databases in the catalog",
		Long: `List the databases reported by the extraction tool.

The catalog is extracted once and reused until it is refreshed. Use --refresh
to run the extraction tool again before listing.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table
  - JSON/YAML: Machine-readable format`,
		Example: `  # List databases
  catalognav databases

  # Re-extract the catalog first
  catalognav databases --refresh

  # Output as JSON
  catalognav databases -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDatabases(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "Re-extract the catalog before listing")

	return cmd
}

// DatabaseSummary is the structured output for one database.
type DatabaseSummary struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Tables int    `json:"tables" yaml:"tables"`
}

func runDatabases(cmd *cobra.Command, opts *DatabasesOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return listDatabases(cmd.Context(), cmdCtx, opts.Refresh)
}

func listDatabases(ctx context.Context, cmdCtx *CommandContext, refresh bool) error {
	dbs, err := cmdCtx.Cache.Databases(ctx, refresh)
	if err != nil {
		return err
	}

	summaries := make([]DatabaseSummary, 0, len(dbs))
	for i, db := range dbs {
		summaries = append(summaries, DatabaseSummary{ID: i, Name: db.Name, Tables: len(db.Tables)})
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(summaries); ok {
		return err
	}

	if len(summaries) == 0 {
		r.Info("No databases found")
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{strconv.Itoa(s.ID), s.Name, strconv.Itoa(s.Tables)})
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Header(1, "Databases")
	}
	r.Table([]string{"ID", "Database", "Tables"}, rows)
	if r.EffectiveMode() == output.ModeText {
		r.Println(r.Styles().Muted.Render(fmt.Sprintf("%d databases", len(summaries))))
	}
	return nil
}
