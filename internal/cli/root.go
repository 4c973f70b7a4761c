// Package cli provides the command-line interface for leapmeta.
package cli

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapmeta/internal/cli/commands"
	"github.com/leapstack-labs/leapmeta/internal/cli/config"
	"github.com/leapstack-labs/leapmeta/internal/logging"
	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// rootOptions holds the flags consumed by the root command itself.
type rootOptions struct {
	cfgFile    string
	targetFlag string
	closeLog   func()
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leapmeta",
		Short: "leapmeta - database metadata adapters",
		Long: `leapmeta reads database metadata through dialect adapters for MySQL,
PostgreSQL, SQLite and DuckDB.

It lists table indexes from the system catalog, reports the generated key or
update count of a mutating statement, and prints query results as the adapter
marshals them.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration with optional target override and CLI flags
			cfg, err := config.LoadConfigWithTarget(opts.cfgFile, opts.targetFlag, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, closeLog, err := logging.New(cmd.ErrOrStderr(), logging.Options{
				Level:            cfg.Log.Level,
				Verbose:          cfg.Verbose,
				SeqURL:           cfg.Log.SeqURL,
				SeqFlushInterval: cfg.Log.FlushInterval,
			})
			if err != nil {
				return fmt.Errorf("invalid log configuration: %w", err)
			}
			opts.closeLog = closeLog

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			if opts.targetFlag != "" {
				logger.Debug("using target", "name", opts.targetFlag)
			}

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			opts.flushLog()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: ./leapmeta.yaml)")
	flags.StringVarP(&opts.targetFlag, "target", "t", "", "Target environment to use (e.g., dev, staging, prod)")
	flags.String("type", "", "Database type (mysql|postgres|sqlite|duckdb)")
	flags.String("database", "", "Database name, or file path for sqlite and duckdb")
	flags.String("host", "", "Database host")
	flags.Int("port", 0, "Database port")
	flags.String("user", "", "Database user (password via LEAPMETA_TARGET__PASSWORD)")
	flags.String("schema", "", "Schema for unqualified tables")
	flags.Int("concurrency", 0, "Maximum tables read at once")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("seq-url", "", "Seq server URL for structured logs")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.StringP("output", "o", "", "Output format (table|json|yaml|markdown)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for type flag
	_ = rootCmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListAdapters(), cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for target flag
	_ = rootCmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"dev", "staging", "prod"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewAdaptersCommand())
	rootCmd.AddCommand(commands.NewIndexesCommand())
	rootCmd.AddCommand(commands.NewExecCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// flushLog closes the Seq sink once. Safe to call when logging was never set up.
func (o *rootOptions) flushLog() {
	if o.closeLog != nil {
		o.closeLog()
		o.closeLog = nil
	}
}

// Execute runs the root command.
func Execute() error {
	opts := &rootOptions{}
	defer opts.flushLog()

	rootCmd := newRootCmd(opts)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
