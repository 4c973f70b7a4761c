// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	// sqlite driver for fixture databases.
	_ "modernc.org/sqlite"
)

// fixtureSchema is the schema of the SQLite fixture database.
var fixtureSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL,
		tenant_id INTEGER NOT NULL,
		name TEXT,
		active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE UNIQUE INDEX idx_users_email ON users (email, tenant_id)`,
	`CREATE INDEX idx_users_name ON users (name)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users (id),
		total REAL
	)`,
	`CREATE INDEX idx_orders_user ON orders (user_id)`,
	`CREATE TABLE audit_log (message TEXT)`,
	`INSERT INTO users (email, tenant_id, name, active) VALUES ('ada@example.com', 1, 'Ada', 1)`,
	`INSERT INTO users (email, tenant_id, name, active) VALUES ('bob@example.com', 1, NULL, 0)`,
}

// NewSQLiteFixture creates a SQLite database file with users, orders and
// audit_log tables and returns its path. The file is removed with the test.
func NewSQLiteFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, stmt := range fixtureSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "fixture statement: %s", stmt)
	}
	return path
}

// ExecuteCommand runs cmd with args and returns what it wrote to stdout and stderr.
func ExecuteCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
