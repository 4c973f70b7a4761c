package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapmeta version and the database adapters compiled into this build.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapmeta v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Adapters: %s\n", strings.Join(adapter.ListAdapters(), ", "))
		},
	}
}
