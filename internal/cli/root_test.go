package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapmeta/internal/cli/config"
	"github.com/leapstack-labs/leapmeta/internal/cli/testutil"
	"github.com/leapstack-labs/leapmeta/pkg/core"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leapmeta/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapmeta/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/leapmeta/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapmeta/pkg/adapters/sqlite"
)

// runCLI executes a fresh root command against the SQLite fixture at dbPath.
func runCLI(t *testing.T, dbPath string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	full := append([]string{"--type", "sqlite", "--database", dbPath}, args...)
	return testutil.ExecuteCommand(t, NewRootCmd(), full...)
}

func TestRoot_Indexes_JSON(t *testing.T) {
	db := testutil.NewSQLiteFixture(t)

	out, _, err := runCLI(t, db, "indexes", "users", "orders", "-o", "json")
	require.NoError(t, err)

	var defs []core.IndexDefinition
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 3)

	byName := make(map[string]core.IndexDefinition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	assert.Equal(t, []string{"email", "tenant_id"}, byName["idx_users_email"].Columns)
	assert.True(t, byName["idx_users_email"].Unique)
	assert.Equal(t, "orders", byName["idx_orders_user"].Table)
	assert.Equal(t, "orders", defs[2].Table, "tables keep argument order")
}

func TestRoot_Indexes_Table(t *testing.T) {
	db := testutil.NewSQLiteFixture(t)

	out, _, err := runCLI(t, db, "indexes", "users")
	require.NoError(t, err)

	assert.Contains(t, out, "idx_users_email")
	assert.Contains(t, out, "email, tenant_id")
	assert.Contains(t, out, "(2 rows)")
}

func TestRoot_Indexes_NoIndexes(t *testing.T) {
	db := testutil.NewSQLiteFixture(t)

	out, errOut, err := runCLI(t, db, "indexes", "audit_log", "-o", "markdown")
	require.NoError(t, err)
	assert.Equal(t, "(0 rows)\n", out)
	assert.Contains(t, errOut, "audit_log has no secondary indexes")
}

func TestRoot_Exec(t *testing.T) {
	db := testutil.NewSQLiteFixture(t)

	out, _, err := runCLI(t, db, "exec", "INSERT INTO users (email, tenant_id) VALUES (?, ?)", "cy@example.com", "2", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"generated_key","key":3}`, out)

	out, _, err = runCLI(t, db, "exec", "UPDATE users SET tenant_id = 3 WHERE tenant_id = 1", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"update_count","count":2}`, out)

	out, _, err = runCLI(t, db, "exec", "DELETE FROM users WHERE id < 0", "-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "result: update_count\ncount: 0\n", out)
}

func TestRoot_Query_YAML(t *testing.T) {
	db := testutil.NewSQLiteFixture(t)

	out, _, err := runCLI(t, db, "query", "SELECT id, name FROM users ORDER BY id", "-o", "yaml")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada", rows[0]["name"])
	assert.Nil(t, rows[1]["name"])
}

func TestRoot_Query_FromFile(t *testing.T) {
	db := testutil.NewSQLiteFixture(t)
	sqlFile := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, os.WriteFile(sqlFile, []byte("SELECT email FROM users WHERE id = ?"), 0o600))

	out, _, err := runCLI(t, db, "query", "--input", sqlFile, "2", "-o", "markdown")
	require.NoError(t, err)
	assert.Equal(t, "| email |\n| --- |\n| bob@example.com |\n", out)
}

func TestRoot_Adapters(t *testing.T) {
	config.ResetConfig()
	out, _, err := testutil.ExecuteCommand(t, NewRootCmd(), "adapters", "-o", "markdown")
	require.NoError(t, err)

	for _, name := range []string{"duckdb", "mysql", "postgres", "sqlite"} {
		assert.Contains(t, out, "| "+name+" |")
	}
}

func TestRoot_UnknownType(t *testing.T) {
	config.ResetConfig()
	_, _, err := testutil.ExecuteCommand(t, NewRootCmd(), "--type", "oracle", "indexes", "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown adapter type")
}

func TestRoot_ConnectFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "x.db")

	_, _, err := runCLI(t, missing, "indexes", "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to sqlite target")
}

func TestRoot_VerboseLogsToStderr(t *testing.T) {
	db := testutil.NewSQLiteFixture(t)

	out, errOut, err := runCLI(t, db, "indexes", "users", "-v", "-o", "json")
	require.NoError(t, err)

	assert.NotContains(t, out, "level=DEBUG", "logs must not mix with results")
	assert.Contains(t, errOut, "level=DEBUG")
}

func TestRoot_ConfigFile(t *testing.T) {
	db := testutil.NewSQLiteFixture(t)
	cfgPath := filepath.Join(t.TempDir(), "leapmeta.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: json\ntarget:\n  type: sqlite\n  database: "+db+"\n"), 0o600))

	config.ResetConfig()
	out, _, err := testutil.ExecuteCommand(t, NewRootCmd(), "--config", cfgPath, "indexes", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "idx_orders_user"`)
}

func TestRoot_Version(t *testing.T) {
	out, _, err := testutil.ExecuteCommand(t, NewRootCmd(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapmeta "+Version)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := testutil.ExecuteCommand(t, NewRootCmd(), "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "leapmeta")
		})
	}

	_, _, err := testutil.ExecuteCommand(t, NewRootCmd(), "completion", "tcsh")
	assert.Error(t, err)
}
