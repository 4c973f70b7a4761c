package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

var dialectConfig = &core.DialectConfig{
	Name: "sqlite",
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormCaseInsensitive,
	},
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderQuestion,
}

// indexCatalogSQL lists the key columns of every index of a table that is not
// the primary key. Expression columns have a NULL column_name.
const indexCatalogSQL = `
SELECT
	il.name AS key_name,
	ii.name AS column_name,
	NULL AS sub_part,
	NOT il."unique" AS non_unique
FROM pragma_index_list(?, ?) AS il
JOIN pragma_index_info(il.name, ?) AS ii
WHERE il.origin != 'pk'
ORDER BY il.seq, ii.seqno`

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
	adapter.GenericMarshaller
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			Logger: logger,
			Keys:   adapter.KeysLastInsertID,
			Probe:  probeMetadata,
		},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "sqlite"
}

// DialectConfig returns the SQLite dialect configuration.
func (a *Adapter) DialectConfig() *core.DialectConfig {
	return dialectConfig
}

// Connect opens the database file at cfg.Path.
// An empty path or ":memory:" opens a private in-memory database per connection.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", cfg.Path))

	if err := a.Open(ctx, "sqlite", buildDSN(cfg.Path, params)); err != nil {
		return err
	}
	a.Cfg = cfg
	return nil
}

// Resolve returns the rowid generated by the last INSERT, or the update count.
func (a *Adapter) Resolve(stmt core.Statement) (core.MutationResult, error) {
	res, err := adapter.Resolve(stmt, a.GenericMarshaller)
	if err != nil {
		return res, err
	}
	a.Logger.Debug("resolved mutation", slog.String("result", res.String()))
	return res, nil
}

// ListIndexes reads the table's indexes with pragma_index_list and
// pragma_index_info. Indexes backing the primary key are excluded.
func (a *Adapter) ListIndexes(ctx context.Context, conn core.Conn, table, schema string) ([]core.IndexDefinition, error) {
	ident, err := adapter.IdentifierCaseOf(ctx, conn)
	if err != nil {
		return nil, core.NewReadError("list indexes", "table "+table, err)
	}

	if schema == "" {
		schema = dialectConfig.DefaultSchema
	}
	q := adapter.CatalogQuery{
		Table: ident.ToStorage(table),
		SQL:   indexCatalogSQL,
		Args:  []any{ident.ToStorage(table), ident.ToStorage(schema), ident.ToStorage(schema)},
	}
	a.Logger.Debug("listing indexes", slog.String("table", q.Table), slog.String("schema", schema))

	return adapter.QueryIndexes(ctx, conn, ident, q)
}

func probeMetadata(ctx context.Context, conn *sql.Conn) (core.ConnMetadata, error) {
	var version string
	if err := conn.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return core.ConnMetadata{}, fmt.Errorf("failed to probe sqlite metadata: %w", err)
	}
	return core.ConnMetadata{
		Product:        "SQLite",
		Version:        version,
		IdentifierCase: core.NormCaseInsensitive,
	}, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
