package commands

import (
	"context"
	"strconv"

	"github.com/leapstack-labs/catalognav/internal/cli/output"
	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/spf13/cobra"
)

// FieldsOptions holds options for the fields command.
type FieldsOptions struct {
	Refresh bool
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	opts := &FieldsOptions{}

	cmd := &cobra.Command{
		Use:   "fields <database> <table>",
		Short: "List the fields of a table",
		Long: `List the fields of a table in position order.

Fields with a repeated count of 0 hold arrays and are marked with [].`,
		Example: `  # List fields by name
  catalognav fields school students

  # By position
  catalognav fields 0 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "Re-extract the catalog before listing")

	return cmd
}

func runFields(cmd *cobra.Command, dbArg, tableArg string, opts *FieldsOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return listFields(cmd.Context(), cmdCtx, dbArg, tableArg, opts.Refresh)
}

func listFields(ctx context.Context, cmdCtx *CommandContext, dbArg, tableArg string, refresh bool) error {
	if refresh {
		if _, err := cmdCtx.Cache.Databases(ctx, true); err != nil {
			return err
		}
	}

	dbID, db, err := resolveDatabase(ctx, cmdCtx.Cache, dbArg)
	if err != nil {
		return err
	}
	tableID, table, err := resolveTable(db, tableArg)
	if err != nil {
		return err
	}
	fields, err := cmdCtx.Cache.Fields(ctx, dbID, tableID, false)
	if err != nil {
		return err
	}
	if fields == nil {
		fields = []core.Field{}
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(fields); ok {
		return err
	}

	if len(fields) == 0 {
		r.Info("Table " + table.Name + " has no fields")
		return nil
	}

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		typ := f.Type
		if f.IsArray() {
			typ += "[]"
		}
		rows = append(rows, []string{strconv.Itoa(f.Position), f.Name, typ, strconv.Itoa(f.RepeatedCount)})
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Header(1, "Fields of "+db.Name+"."+table.Name)
	}
	r.Table([]string{"Position", "Field", "Type", "Repeated"}, rows)
	return nil
}
