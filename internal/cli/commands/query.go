package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// resultSet is the rendered result of the query command.
// JSON and YAML encode one object per row keyed by column name.
type resultSet struct {
	columns []string
	rows    [][]any
}

func (r resultSet) Columns() []string { return r.columns }

func (r resultSet) Rows() [][]any { return r.rows }

func (r resultSet) records() []map[string]any {
	out := make([]map[string]any, len(r.rows))
	for i, row := range r.rows {
		rec := make(map[string]any, len(r.columns))
		for j, col := range r.columns {
			rec[col] = row[j]
		}
		out[i] = rec
	}
	return out
}

func (r resultSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.records())
}

func (r resultSet) MarshalYAML() (any, error) {
	return r.records(), nil
}

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [sql] [args]...",
		Short: "Run a query and print the marshalled values",
		Long: `Run a query against the target and print each value as the adapter marshals it.

MySQL BOOLEAN and BIT columns print as 0 or 1. SQL NULL prints as NULL.
The SQL comes from the first argument, from --input, or from piped stdin.`,
		Example: `  # Inline SQL
  leapmeta query "SELECT id, active FROM users WHERE id = ?" 42

  # From a file, as YAML
  leapmeta query --input report.sql -o yaml

  # From stdin
  echo "SELECT 1" | leapmeta query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	var (
		sqlQuery string
		bind     []string
	)

	switch {
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery, bind = string(content), args
	case len(args) > 0:
		sqlQuery, bind = args[0], args[1:]
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	}

	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return fmt.Errorf("no SQL given (pass it as an argument, with --input, or on stdin)")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rs, err := queryRows(cmd.Context(), cmdCtx.Adapter, sqlQuery, bindArgs(bind)...)
	if err != nil {
		return err
	}
	return cmdCtx.Renderer.Render(rs)
}

// queryRows runs sqlQuery on its own connection and marshals every row.
func queryRows(ctx context.Context, adp adapter.Adapter, sqlQuery string, args ...any) (resultSet, error) {
	conn, err := adp.Conn(ctx)
	if err != nil {
		return resultSet{}, err
	}
	defer func() { _ = conn.Close() }()

	stmt, err := conn.Prepare(ctx, sqlQuery)
	if err != nil {
		return resultSet{}, err
	}
	defer func() { _ = stmt.Close() }()

	cur, err := stmt.Query(ctx, args...)
	if err != nil {
		return resultSet{}, err
	}
	defer func() { _ = cur.Close() }()

	rs := resultSet{columns: cur.Columns(), rows: [][]any{}}
	for cur.Next() {
		values, err := adapter.MarshalRow(adp, cur)
		if err != nil {
			return resultSet{}, err
		}
		rs.rows = append(rs.rows, hostValues(values))
	}
	if err := cur.Err(); err != nil {
		return resultSet{}, core.NewReadError("query", "", err)
	}
	return rs, nil
}

func hostValues(values []core.MarshalledValue) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if !v.Null {
			out[i] = v.Value
		}
	}
	return out
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
