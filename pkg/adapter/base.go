package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, and Conn implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger

	// Keys selects how generated keys are read back after Execute.
	Keys KeyStrategy

	// Probe reads connection metadata. Nil means identifiers are stored as written.
	Probe MetadataProbe
}

// Open opens and pings a database/sql pool for the named driver.
func (b *BaseSQLAdapter) Open(ctx context.Context, driverName, dsn string) error {
	b.logger().Debug("opening database connection", slog.String("driver", driverName))

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", driverName, err)
	}

	b.DB = db
	return nil
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Conn acquires a dedicated connection from the pool.
func (b *BaseSQLAdapter) Conn(ctx context.Context) (core.Conn, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	conn, err := b.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return NewSQLConn(conn, b.Keys, b.Probe), nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		b.Logger = slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses the dialect's default schema if not specified.
func ParseQualifiedName(table string, d *core.DialectConfig) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return d.DefaultSchema, table
}

// QuoteIdentifier quotes name with the dialect's identifier quotes,
// escaping embedded quote characters.
func QuoteIdentifier(name string, ids core.IdentifierConfig) string {
	end := ids.QuoteEnd
	if end == "" {
		end = ids.Quote
	}
	escape := ids.Escape
	if escape == "" {
		escape = end + end
	}
	return ids.Quote + strings.ReplaceAll(name, end, escape) + end
}
