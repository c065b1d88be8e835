package commands

import (
	"github.com/leapstack-labs/catalognav/internal/explorer"
	"github.com/spf13/cobra"
)

// NewExploreCommand creates the explore command.
func NewExploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse the catalog and its records in a terminal UI",
		Long: `Open an interactive explorer over the catalog.

The left-hand tree lists databases, tables, fields and relationships. Opening
a table shows its rows in a grid where links can be followed to related rows.

Keys:
  ↑/↓, j/k     Move
  →/l, space   Expand or collapse
  enter        Open a table, follow the selected link
  tab          Select the next link column
  esc          Go back
  r            Refresh the catalog
  q            Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return explorer.Run(cmd.Context(), explorer.NewSource(cmdCtx.Cache, cmdCtx.Fetcher))
		},
	}
}
