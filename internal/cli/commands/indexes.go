package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// indexList is the rendered result of the indexes command.
type indexList []core.IndexDefinition

func (l indexList) Columns() []string {
	return []string{"table", "index", "unique", "columns"}
}

func (l indexList) Rows() [][]any {
	rows := make([][]any, len(l))
	for i, def := range l {
		rows[i] = []any{def.Table, def.Name, def.Unique, formatIndexColumns(def)}
	}
	return rows
}

// formatIndexColumns renders key columns as "name" or "name(length)".
// Expression keys have no column name and render as "<expr>".
func formatIndexColumns(def core.IndexDefinition) string {
	parts := make([]string, len(def.Columns))
	for i, col := range def.Columns {
		if col == "" {
			col = "<expr>"
		}
		if n, ok := def.Length(i); ok {
			col = fmt.Sprintf("%s(%d)", col, n)
		}
		parts[i] = col
	}
	return strings.Join(parts, ", ")
}

// NewIndexesCommand creates the indexes command.
func NewIndexesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes <table>...",
		Short: "List the indexes of one or more tables",
		Long: `List the user-defined indexes of each table, excluding the primary key.

Tables may be qualified as schema.table; unqualified tables use the target schema.
Tables are read concurrently, each on its own connection.`,
		Example: `  # Indexes of one table
  leapmeta indexes users

  # Several tables from a MySQL target, as JSON
  leapmeta indexes orders customers --type mysql --database shop -o json

  # A qualified Postgres table
  leapmeta indexes sales.orders --target prod`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			defs, err := listIndexes(cmd.Context(), cmdCtx.Adapter, args, cmdCtx.Cfg.Target.Schema, cmdCtx.Cfg.Concurrency)
			if err != nil {
				return err
			}
			cmdCtx.Logger.Debug("listed indexes", slog.Int("tables", len(args)), slog.Int("indexes", len(defs)))
			for _, ref := range args {
				_, table := splitTableRef(ref, "", cmdCtx.Adapter.DialectConfig())
				if !hasIndexOn(defs, table) {
					cmdCtx.Renderer.Notice("%s has no secondary indexes", ref)
				}
			}
			return cmdCtx.Renderer.Render(indexList(defs))
		},
	}
}

func hasIndexOn(defs []core.IndexDefinition, table string) bool {
	for _, def := range defs {
		if strings.EqualFold(def.Table, table) {
			return true
		}
	}
	return false
}

// listIndexes reads the indexes of every table concurrently, at most limit at
// a time. Results keep the order of tables. The first failure cancels the rest.
func listIndexes(ctx context.Context, adp adapter.Adapter, tables []string, schema string, limit int) ([]core.IndexDefinition, error) {
	results := make([][]core.IndexDefinition, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for i, ref := range tables {
		tableSchema, table := splitTableRef(ref, schema, adp.DialectConfig())
		g.Go(func() error {
			conn, err := adp.Conn(gctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			defs, err := adp.ListIndexes(gctx, conn, table, tableSchema)
			if err != nil {
				return fmt.Errorf("failed to list indexes of %s: %w", ref, err)
			}
			results[i] = defs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]core.IndexDefinition, 0, len(tables))
	for _, defs := range results {
		all = append(all, defs...)
	}
	return all, nil
}

// splitTableRef resolves a table argument to its schema and name.
func splitTableRef(ref, schema string, d *core.DialectConfig) (string, string) {
	if !strings.Contains(ref, ".") {
		return schema, ref
	}
	return adapter.ParseQualifiedName(ref, d)
}
