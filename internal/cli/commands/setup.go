package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmeta/internal/cli/config"
	"github.com/leapstack-labs/leapmeta/internal/cli/output"
	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Adapter  adapter.Adapter
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a connected adapter.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutAdapter(cmd)

	adp, err := connectTarget(cmd, cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Adapter = adp

	cleanup := func() {
		if err := adp.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close adapter", slog.String("error", err.Error()))
		}
	}

	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutAdapter creates a CommandContext without a database connection.
// Useful for commands that only inspect the registry or configuration.
func NewCommandContextWithoutAdapter(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Format(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// connectTarget creates the adapter for the configured target and connects it.
func connectTarget(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (adapter.Adapter, error) {
	adapterCfg := cfg.Target.AdapterConfig()

	adp, err := adapter.NewAdapter(adapterCfg, logger.With(slog.String("dialect", cfg.Target.Type)))
	if err != nil {
		return nil, err
	}

	if err := adp.Connect(cmd.Context(), adapterCfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s target: %w", cfg.Target.Type, err)
	}
	return adp, nil
}
