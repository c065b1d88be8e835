package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/catalognav/internal/cli/config"
	"github.com/leapstack-labs/catalognav/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a catalognav.yaml configuration",
		Long: `Create a catalognav.yaml configuration file with default settings.

This creates:
  - catalognav.yaml with the extraction tool path and snapshot location
  - .gitignore excluding the .catalognav/ snapshot directory`,
		Example: `  # Initialize in current directory
  catalognav init

  # Initialize in a new directory
  catalognav init my-workspace

  # Force overwrite existing config
  catalognav init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := config.FromContext(cmd.Context())
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "catalognav.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("catalognav.yaml already exists. Use --force to overwrite")
	}

	files, err := copyTemplate("project", dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}

	for _, f := range files {
		r.Println(r.Styles().Success.Render("+") + " " + f)
	}

	r.Println("")
	r.Success("catalognav initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Point 'extractor' in catalognav.yaml at your extraction tool")
	r.Println("  2. Run 'catalognav databases' to list the catalog")
	r.Println("  3. Run 'catalognav explore' to browse records")

	return nil
}
