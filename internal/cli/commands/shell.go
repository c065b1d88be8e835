package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/spf13/cobra"
)

const shellPrompt = "catalognav> "

// ShellOptions holds options for the shell command.
type ShellOptions struct {
	Format string // Records format: table, json, csv, md, yaml
}

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	opts := &ShellOptions{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Browse the catalog in an interactive shell",
		Long: `Start an interactive shell for browsing the catalog.

The catalog is extracted once and shared by every command of the session.
After .records has shown a table, .follow moves along one of its links.

Commands:
  .databases                 List databases
  .tables <db>               List tables of a database
  .fields <db> <table>       List fields of a table
  .records <db> <table>      Show the rows of a table
  .follow <link> <row>       Show rows related to a row of the last table
  .refresh                   Re-extract the catalog
  .help                      Show help
  .quit / .exit              Exit the shell`,
		Example: `  # Start the shell
  catalognav shell

  # Show records as CSV
  catalognav shell --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Records format: table, json, csv, md, yaml")

	return cmd
}

func runShell(cmd *cobra.Command, opts *ShellOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	sh := newShell(cmdCtx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Format)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     shellHistoryFile(cmdCtx),
		AutoComplete:    sh.completer(ctx),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(sh.out, "catalognav shell (extractor: %s)\n", cmdCtx.Cfg.ExtractorPath)
	_, _ = fmt.Fprintln(sh.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(sh.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if sh.exec(ctx, line) {
			break
		}
	}

	return nil
}

// shellHistoryFile keeps history next to the snapshot, or disables it when
// snapshots are off.
func shellHistoryFile(cmdCtx *CommandContext) string {
	if !cmdCtx.Cfg.SnapshotEnabled() {
		return ""
	}
	return filepath.Join(filepath.Dir(cmdCtx.Cfg.SnapshotPath), "shell_history")
}

// shell executes dot-commands against one command context.
type shell struct {
	cmdCtx *CommandContext
	out    io.Writer
	errOut io.Writer
	format string
	last   *core.TableView
}

func newShell(cmdCtx *CommandContext, out, errOut io.Writer, format string) *shell {
	return &shell{cmdCtx: cmdCtx, out: out, errOut: errOut, format: format}
}

// exec runs one input line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	command := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(s.out)

	case ".databases":
		err = listDatabases(ctx, s.cmdCtx, false)

	case ".tables":
		if len(args) != 1 {
			s.usage(".tables <db>")
			return false
		}
		err = listTables(ctx, s.cmdCtx, args[0], false)

	case ".fields":
		if len(args) != 2 {
			s.usage(".fields <db> <table>")
			return false
		}
		err = listFields(ctx, s.cmdCtx, args[0], args[1], false)

	case ".records":
		if len(args) != 2 {
			s.usage(".records <db> <table>")
			return false
		}
		err = s.show(ctx, args[0], args[1], &RecordsOptions{Format: s.format})

	case ".follow":
		if len(args) != 2 {
			s.usage(".follow <link> <row>")
			return false
		}
		if s.last == nil {
			err = errors.New("no table shown yet, use .records first")
			break
		}
		err = s.show(ctx, s.last.Database, s.last.Table, &RecordsOptions{
			LinkName: args[0],
			LinkRow:  args[1],
			Format:   s.format,
		})

	case ".refresh":
		s.last = nil
		err = refreshCatalog(ctx, s.cmdCtx)

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
		return false
	}

	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	_, _ = fmt.Fprintln(s.out)
	return false
}

func (s *shell) show(ctx context.Context, dbArg, tableArg string, opts *RecordsOptions) error {
	view, err := showRecords(ctx, s.cmdCtx, dbArg, tableArg, opts)
	if err != nil {
		return err
	}
	if view != nil {
		s.last = view
	}
	return nil
}

func (s *shell) usage(text string) {
	_, _ = fmt.Fprintln(s.errOut, "Usage: "+text)
}

// completer offers the dot-commands, database names after .tables, .fields
// and .records, and the last table's links after .follow.
func (s *shell) completer(ctx context.Context) *readline.PrefixCompleter {
	databases := func(string) []string {
		dbs, err := s.cmdCtx.Cache.Databases(ctx, false)
		if err != nil {
			return nil
		}
		names := make([]string, 0, len(dbs))
		for _, db := range dbs {
			names = append(names, db.Name)
		}
		return names
	}
	links := func(string) []string {
		if s.last == nil {
			return nil
		}
		var names []string
		for _, col := range s.last.LinkColumns() {
			names = append(names, col.Key)
		}
		return names
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".databases"),
		readline.PcItem(".tables", readline.PcItemDynamic(databases)),
		readline.PcItem(".fields", readline.PcItemDynamic(databases)),
		readline.PcItem(".records", readline.PcItemDynamic(databases)),
		readline.PcItem(".follow", readline.PcItemDynamic(links)),
		readline.PcItem(".refresh"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .databases               List databases
  .tables <db>             List tables of a database (index or name)
  .fields <db> <table>     List fields of a table
  .records <db> <table>    Show the rows of a table
  .follow <link> <row>     Show rows related to a row of the last table
  .refresh                 Re-extract the catalog
  .help                    Show this help message
  .quit / .exit            Exit the shell

Tips:
  - Use arrow keys to navigate history
  - Tab completion works for commands, databases and links
`
	_, _ = fmt.Fprintln(w, help)
}
