package commands

import (
	"log/slog"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/spf13/cobra"
)

// mutationView is the rendered result of the exec command.
type mutationView struct {
	Result string `json:"result" yaml:"result"`
	Key    any    `json:"key,omitempty" yaml:"key,omitempty"`
	Count  *int64 `json:"count,omitempty" yaml:"count,omitempty"`
}

func newMutationView(res core.MutationResult) mutationView {
	if res.HasKey() {
		return mutationView{Result: "generated_key", Key: res.Key}
	}
	count := res.Count
	return mutationView{Result: "update_count", Count: &count}
}

func (v mutationView) Columns() []string {
	return []string{"result", "value"}
}

func (v mutationView) Rows() [][]any {
	if v.Count != nil {
		return [][]any{{v.Result, *v.Count}}
	}
	return [][]any{{v.Result, v.Key}}
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql> [args]...",
		Short: "Execute a mutating statement and report its generated key or update count",
		Long: `Execute one INSERT, UPDATE, DELETE or REPLACE statement against the target.

The statement runs with generated keys requested. When the database generated a
key, it is reported; otherwise the number of affected rows is reported. Extra
arguments are bound to the statement's placeholders in order.`,
		Example: `  # Insert a row and print its id
  leapmeta exec "INSERT INTO users (email) VALUES (?)" ada@example.com

  # Postgres reports keys through RETURNING
  leapmeta exec "INSERT INTO users (email) VALUES (\$1) RETURNING id" ada@example.com --target prod`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			conn, err := cmdCtx.Adapter.Conn(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			res, err := adapter.ExecMutation(cmd.Context(), conn, cmdCtx.Adapter, args[0], bindArgs(args[1:])...)
			if err != nil {
				return err
			}
			cmdCtx.Logger.Debug("executed mutation", slog.String("result", res.String()))
			return cmdCtx.Renderer.Render(newMutationView(res))
		},
	}
}

// bindArgs converts command-line arguments to statement arguments.
func bindArgs(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
