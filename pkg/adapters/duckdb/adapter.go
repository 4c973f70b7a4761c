// Package duckdb provides a DuckDB database adapter for leapmeta.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

var dialectConfig = &core.DialectConfig{
	Name: "duckdb",
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormCaseInsensitive,
	},
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderQuestion,
}

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	adapter.GenericMarshaller
}

// New creates a new DuckDB adapter instance.
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
	return "duckdb"
}

// DialectConfig returns the DuckDB dialect configuration.
func (a *Adapter) DialectConfig() *core.DialectConfig {
	return dialectConfig
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	if err := a.Open(ctx, "duckdb", path); err != nil {
		return err
	}
	a.Cfg = cfg

	if err := a.configure(ctx, params); err != nil {
		_ = a.Close()
		a.DB = nil
		return err
	}
	return nil
}

// configure loads extensions, creates secrets, and applies settings.
func (a *Adapter) configure(ctx context.Context, p *Params) error {
	for _, ext := range p.Extensions {
		if !settingName.MatchString(ext) {
			return fmt.Errorf("invalid extension name %q", ext)
		}
		a.Logger.Debug("loading extension", slog.String("extension", ext))
		if err := a.Exec(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if err := a.Exec(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	for i, secret := range p.Secrets {
		if err := a.Exec(ctx, buildCreateSecretSQL(secret)); err != nil {
			return fmt.Errorf("failed to create secret %d (%s): %w", i, secret.Type, err)
		}
	}

	for name, value := range p.Settings {
		stmt, err := buildSetSQL(name, value)
		if err != nil {
			return err
		}
		if err := a.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", name, err)
		}
	}
	return nil
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

// probeMetadata reads the library version. DuckDB keeps identifiers as
// written and compares them case-insensitively.
func probeMetadata(ctx context.Context, conn *sql.Conn) (core.ConnMetadata, error) {
	var version string
	if err := conn.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return core.ConnMetadata{}, fmt.Errorf("failed to probe duckdb metadata: %w", err)
	}
	return core.ConnMetadata{
		Product:        "DuckDB",
		Version:        version,
		IdentifierCase: core.NormCaseInsensitive,
	}, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
