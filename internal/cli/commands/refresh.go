package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Discard the catalog and extract it again",
		Long: `Discard the cached catalog, including any persisted snapshot, and run the
extraction tool to build a new one.`,
		Example: `  catalognav refresh`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd)
		},
	}
}

// RefreshOutput is the structured output for the refresh command.
type RefreshOutput struct {
	Databases int `json:"databases" yaml:"databases"`
	Tables    int `json:"tables" yaml:"tables"`
}

func runRefresh(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return refreshCatalog(cmd.Context(), cmdCtx)
}

func refreshCatalog(ctx context.Context, cmdCtx *CommandContext) error {
	cat, err := cmdCtx.Cache.Refresh(ctx)
	if err != nil {
		return err
	}

	out := RefreshOutput{Databases: len(cat.Databases)}
	for _, db := range cat.Databases {
		out.Tables += len(db.Tables)
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(out); ok {
		return err
	}
	r.Success(fmt.Sprintf("Catalog refreshed: %d databases, %d tables", out.Databases, out.Tables))
	return nil
}
