package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/leapstack-labs/catalognav/internal/cli/output"
	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/spf13/cobra"
)

// TablesOptions holds options for the tables command.
type TablesOptions struct {
	Refresh bool
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	opts := &TablesOptions{}

	cmd := &cobra.Command{
		Use:   "tables <database>",
		Short: "List the tables of a database",
		Long: `List the tables of a database together with their links to other tables.

The database is given by its position in the 'databases' listing or by name.`,
		Example: `  # List tables by database name
  catalognav tables school

  # List tables of the first database
  catalognav tables 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "Re-extract the catalog before listing")

	return cmd
}

// TableSummary is the structured output for one table.
type TableSummary struct {
	ID            int                 `json:"id" yaml:"id"`
	Name          string              `json:"name" yaml:"name"`
	Type          string              `json:"type" yaml:"type"`
	Fields        int                 `json:"fields" yaml:"fields"`
	Relationships []core.Relationship `json:"relationships" yaml:"relationships"`
}

func runTables(cmd *cobra.Command, dbArg string, opts *TablesOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return listTables(cmd.Context(), cmdCtx, dbArg, opts.Refresh)
}

func listTables(ctx context.Context, cmdCtx *CommandContext, dbArg string, refresh bool) error {
	if refresh {
		if _, err := cmdCtx.Cache.Databases(ctx, true); err != nil {
			return err
		}
	}

	dbID, db, err := resolveDatabase(ctx, cmdCtx.Cache, dbArg)
	if err != nil {
		return err
	}
	tables, err := cmdCtx.Cache.Tables(ctx, dbID, false)
	if err != nil {
		return err
	}

	summaries := make([]TableSummary, 0, len(tables))
	for i, t := range tables {
		rels := t.Relationships
		if rels == nil {
			rels = []core.Relationship{}
		}
		summaries = append(summaries, TableSummary{
			ID:            i,
			Name:          t.Name,
			Type:          t.Type,
			Fields:        len(t.Fields),
			Relationships: rels,
		})
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(summaries); ok {
		return err
	}

	if len(summaries) == 0 {
		r.Info("No tables in database " + db.Name)
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		links := make([]string, 0, len(s.Relationships))
		for _, rel := range s.Relationships {
			links = append(links, rel.LinkName+" -> "+rel.TableName)
		}
		rows = append(rows, []string{strconv.Itoa(s.ID), s.Name, s.Type, strconv.Itoa(s.Fields), strings.Join(links, ", ")})
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Header(1, "Tables in "+db.Name)
	}
	r.Table([]string{"ID", "Table", "Type", "Fields", "Links"}, rows)
	return nil
}
