package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// dialectConfig is the static MySQL dialect description.
var dialectConfig = &core.DialectConfig{
	Name: "mysql",
	Identifiers: core.IdentifierConfig{
		Quote:         "`",
		QuoteEnd:      "`",
		Escape:        "``",
		Normalization: core.NormCaseSensitive,
	},
	Placeholder: core.PlaceholderQuestion,
}

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
	Marshaller
}

// New creates a new MySQL adapter instance.
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
	return "mysql"
}

// DialectConfig returns the MySQL dialect configuration.
func (a *Adapter) DialectConfig() *core.DialectConfig {
	return dialectConfig
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	if err := a.Open(ctx, "mysql", buildDSN(cfg, params)); err != nil {
		return err
	}
	a.Cfg = cfg
	return nil
}

// Resolve returns the generated key of the last INSERT, or its update count.
func (a *Adapter) Resolve(stmt core.Statement) (core.MutationResult, error) {
	res, err := adapter.Resolve(stmt, a.Marshaller)
	if err != nil {
		return res, err
	}
	a.Logger.Debug("resolved mutation", slog.String("result", res.String()))
	return res, nil
}

// ListIndexes reads the table's indexes with SHOW KEYS. The primary key is excluded.
func (a *Adapter) ListIndexes(ctx context.Context, conn core.Conn, table, schema string) ([]core.IndexDefinition, error) {
	ident, err := adapter.IdentifierCaseOf(ctx, conn)
	if err != nil {
		return nil, core.NewReadError("list indexes", "table "+table, err)
	}

	q := showKeysQuery(ident, table, schema)
	a.Logger.Debug("listing indexes", slog.String("table", q.Table), slog.String("sql", q.SQL))

	return adapter.QueryIndexes(ctx, conn, ident, q)
}

// showKeysQuery builds the SHOW KEYS statement for a table in storage case.
func showKeysQuery(ident adapter.IdentifierCase, table, schema string) adapter.CatalogQuery {
	storageTable := ident.ToStorage(table)

	from := adapter.QuoteIdentifier(storageTable, dialectConfig.Identifiers)
	if schema != "" {
		from = adapter.QuoteIdentifier(ident.ToStorage(schema), dialectConfig.Identifiers) + "." + from
	}

	return adapter.CatalogQuery{
		Table: storageTable,
		SQL:   "SHOW KEYS FROM " + from + " WHERE Key_name != 'PRIMARY'",
		Skip:  isPrimaryKey,
	}
}

func isPrimaryKey(keyName string) bool {
	return keyName == "PRIMARY"
}

// probeMetadata reads the server version and identifier storage rules.
// lower_case_table_names=1 stores table names in lower case; 0 and 2 keep them as written.
func probeMetadata(ctx context.Context, conn *sql.Conn) (core.ConnMetadata, error) {
	var (
		lowerCase int
		version   string
	)
	err := conn.QueryRowContext(ctx, "SELECT @@lower_case_table_names, VERSION()").Scan(&lowerCase, &version)
	if err != nil {
		return core.ConnMetadata{}, fmt.Errorf("failed to probe mysql metadata: %w", err)
	}

	meta := core.ConnMetadata{
		Product:        "MySQL",
		Version:        version,
		IdentifierCase: core.NormCaseSensitive,
	}
	if lowerCase == 1 {
		meta.IdentifierCase = core.NormLowercase
	}
	return meta, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
