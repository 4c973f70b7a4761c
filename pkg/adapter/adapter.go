// Package adapter provides database adapter interfaces and the shared
// machinery used by every dialect: identifier case conversion, value
// marshalling, mutation result resolution, and index catalog folding.
//
// This package contains the public contract that all database adapters must implement.
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// Type aliases for convenience - these types are defined in pkg/core.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// IndexDefinition is an alias for core.IndexDefinition.
	IndexDefinition = core.IndexDefinition
)

// Adapter defines the interface that all database adapters must implement.
// It provides methods for connecting to databases, decoding values,
// resolving mutation results, and reading index definitions.
type Adapter interface {
	Marshaller

	// Connect establishes a connection pool using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection pool and releases resources.
	Close() error

	// DialectName returns the dialect identifier (e.g., "mysql").
	DialectName() string

	// DialectConfig returns the static dialect configuration.
	DialectConfig() *core.DialectConfig

	// Conn acquires a single-owner connection from the pool.
	// The caller must Close it.
	Conn(ctx context.Context) (core.Conn, error)

	// Resolve interprets the outcome of a statement executed with generated keys requested.
	Resolve(stmt core.Statement) (core.MutationResult, error)

	// ListIndexes returns the user-defined indexes of a table, excluding the primary key.
	// An empty schema means the connection's current schema.
	ListIndexes(ctx context.Context, conn core.Conn, table, schema string) ([]core.IndexDefinition, error)
}
