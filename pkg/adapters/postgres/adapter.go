// Package postgres provides a PostgreSQL database adapter for leapmeta.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
)

var dialectConfig = &core.DialectConfig{
	Name: "postgres",
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormLowercase,
	},
	DefaultSchema: "public",
	Placeholder:   core.PlaceholderDollar,
}

// indexCatalogSQL lists the key columns of every non-primary index of a table,
// one row per column in index order. Expression columns have a NULL column_name.
const indexCatalogSQL = `
SELECT
	i.relname AS key_name,
	a.attname AS column_name,
	NULL::int AS sub_part,
	NOT ix.indisunique AS non_unique
FROM pg_index ix
JOIN pg_class t ON t.oid = ix.indrelid
JOIN pg_namespace n ON n.oid = t.relnamespace
JOIN pg_class i ON i.oid = ix.indexrelid
CROSS JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
LEFT JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
WHERE t.relname = $1
	AND n.nspname = COALESCE(NULLIF($2, ''), current_schema())
	AND NOT ix.indisprimary
	AND k.ord <= ix.indnkeyatts
ORDER BY i.relname, k.ord`

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
	adapter.GenericMarshaller
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			Logger: logger,
			Keys:   adapter.KeysReturning,
			Probe:  probeMetadata,
		},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "postgres"
}

// DialectConfig returns the PostgreSQL dialect configuration.
func (a *Adapter) DialectConfig() *core.DialectConfig {
	return dialectConfig
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	if err := a.Open(ctx, "pgx", buildPostgresDSN(cfg)); err != nil {
		return err
	}
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", quoteDSNValue(cfg.Password))
	}

	// Remaining options are passed through in a stable order
	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		if k != "sslmode" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		dsn += fmt.Sprintf(" %s=%s", k, quoteDSNValue(cfg.Options[k]))
	}

	return dsn
}

// quoteDSNValue quotes a keyword/value DSN value when it contains spaces or quotes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Resolve returns the first value of a RETURNING clause, or the update count.
func (a *Adapter) Resolve(stmt core.Statement) (core.MutationResult, error) {
	res, err := adapter.Resolve(stmt, a.GenericMarshaller)
	if err != nil {
		return res, err
	}
	a.Logger.Debug("resolved mutation", slog.String("result", res.String()))
	return res, nil
}

// ListIndexes reads the table's non-primary indexes from pg_index.
// An empty schema means the connection's current schema.
func (a *Adapter) ListIndexes(ctx context.Context, conn core.Conn, table, schema string) ([]core.IndexDefinition, error) {
	ident, err := adapter.IdentifierCaseOf(ctx, conn)
	if err != nil {
		return nil, core.NewReadError("list indexes", "table "+table, err)
	}

	q := adapter.CatalogQuery{
		Table: ident.ToStorage(table),
		SQL:   indexCatalogSQL,
		Args:  []any{ident.ToStorage(table), ident.ToStorage(schema)},
	}
	a.Logger.Debug("listing indexes", slog.String("table", q.Table), slog.String("schema", schema))

	return adapter.QueryIndexes(ctx, conn, ident, q)
}

// probeMetadata reads the server version. Unquoted identifiers are always
// stored in lower case.
func probeMetadata(ctx context.Context, conn *sql.Conn) (core.ConnMetadata, error) {
	var version string
	if err := conn.QueryRowContext(ctx, "SHOW server_version").Scan(&version); err != nil {
		return core.ConnMetadata{}, fmt.Errorf("failed to probe postgres metadata: %w", err)
	}
	return core.ConnMetadata{
		Product:        "PostgreSQL",
		Version:        version,
		IdentifierCase: core.NormLowercase,
	}, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
