package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/cli/config"
	"github.com/leapstack-labs/catalognav/internal/cli/output"
	"github.com/leapstack-labs/catalognav/internal/extractor"
	"github.com/leapstack-labs/catalognav/internal/state"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Runner   extractor.Runner
	Cache    *catalog.Cache
	Fetcher  *tabledata.Fetcher
	Renderer *output.Renderer
}

// runnerFromContext returns the runner placed in ctx by extractor.WithRunner,
// or one that starts the configured extraction tool.
func runnerFromContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) extractor.Runner {
	if r, ok := extractor.RunnerFromContext(ctx); ok {
		return r
	}
	return extractor.NewExecRunner(cfg.ExtractorPath, logger)
}

// NewCommandContext creates a CommandContext with a catalog cache, a table
// data fetcher and a renderer. Returns the context and a cleanup function
// that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)
	runner := runnerFromContext(ctx, cfg, logger)

	opts := []catalog.Option{catalog.WithLogger(logger)}
	cleanup := func() {}

	if cfg.SnapshotEnabled() {
		store, err := state.OpenStore(cfg.SnapshotPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
		opts = append(opts, catalog.WithStore(store))
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close snapshot store", "error", err)
			}
		}
	}

	cache := catalog.New(runner, opts...)
	mode := output.Mode(cfg.OutputFormat)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Runner:   runner,
		Cache:    cache,
		Fetcher:  tabledata.NewFetcher(cache, runner, logger),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, cleanup, nil
}

// NewCommandContextWithoutCatalog creates a CommandContext without a cache.
// Useful for commands that never run the extractor.
func NewCommandContextWithoutCatalog(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)
	mode := output.Mode(cfg.OutputFormat)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}
}
