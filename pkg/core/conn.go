package core

import (
	"context"
	"database/sql"
)

// ConnMetadata describes the capabilities of an open connection.
type ConnMetadata struct {
	// Product is the database product name reported by the dialect (e.g., "MySQL").
	Product string
	// Version is the server version string, if the dialect could read it.
	Version string
	// IdentifierCase is how the server stores unquoted identifiers.
	IdentifierCase NormalizationStrategy
}

// Conn is a single-owner database connection.
// It must not be used by two goroutines at the same time.
type Conn interface {
	// Prepare creates a statement for later execution.
	Prepare(ctx context.Context, query string) (Statement, error)

	// Metadata returns the connection capabilities.
	Metadata(ctx context.Context) (ConnMetadata, error)

	// Close returns the connection to its pool.
	Close() error
}

// Statement is a prepared statement bound to one Conn.
type Statement interface {
	// Execute runs the statement. When returnGeneratedKeys is set, the statement
	// records any keys the database generated so GeneratedKeys can return them.
	// The boolean result reports whether the statement produced a result set.
	Execute(ctx context.Context, returnGeneratedKeys bool, args ...any) (bool, error)

	// Query runs the statement and returns its rows.
	Query(ctx context.Context, args ...any) (RowCursor, error)

	// UpdateCount returns the number of rows affected by the last Execute,
	// or -1 when the statement has not been executed.
	UpdateCount() int64

	// GeneratedKeys returns the keys produced by the last Execute.
	// The cursor is empty when no keys were produced.
	GeneratedKeys() (RowCursor, error)

	// Close releases the statement.
	Close() error
}

// RowCursor iterates over a result set. Column positions are zero-based.
//
// Typed getters return sql.Null* values: Valid is false when the column is SQL NULL.
type RowCursor interface {
	Next() bool
	Err() error
	Close() error

	// Columns returns the result set column names.
	Columns() []string

	// Lookup returns the position of the named column, compared case-insensitively.
	Lookup(name string) (int, bool)

	// DeclaredType returns the wire type family of the column.
	DeclaredType(pos int) SQLType

	Value(pos int) (any, error)
	Bool(pos int) (sql.NullBool, error)
	Int64(pos int) (sql.NullInt64, error)
	Float64(pos int) (sql.NullFloat64, error)
	String(pos int) (sql.NullString, error)
	Time(pos int) (sql.NullTime, error)
	Bytes(pos int) ([]byte, error)
}

