package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapmeta/internal/testutil"
	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "default path",
			setupPath: func(_ *testing.T) string {
				return ""
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				tmpDir := t.TempDir()
				return filepath.Join(tmpDir, "test.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: dbPath}))
			defer func() { _ = adp.Close() }()

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Exec(ctx, "SELECT 1")
			},
		},
		{
			name: "conn without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Conn(ctx)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			err := tt.operation(ctx, adp)
			assert.Error(t, err, "expected error when operating without connection")
		})
	}
}

func TestAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		connect bool
	}{
		{"close without connect", false},
		{"close after connect", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			if tt.connect {
				require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
			}

			assert.NoError(t, adp.Close())
		})
	}
}

// connectMemory opens an in-memory database and a connection on it.
func connectMemory(t *testing.T) (*Adapter, core.Conn) {
	t.Helper()
	ctx := context.Background()

	adp := New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })

	conn, err := adp.Conn(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return adp, conn
}

func TestAdapter_ListIndexes(t *testing.T) {
	ctx := context.Background()
	adp, conn := connectMemory(t)

	require.NoError(t, adp.Exec(ctx, `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email VARCHAR,
			tenant_id INTEGER,
			name VARCHAR
		)
	`))
	require.NoError(t, adp.Exec(ctx, `CREATE UNIQUE INDEX idx_email ON users (email, tenant_id)`))
	require.NoError(t, adp.Exec(ctx, `CREATE INDEX idx_name ON users (name)`))

	defs, err := adp.ListIndexes(ctx, conn, "users", "")
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "idx_email", defs[0].Name)
	assert.Equal(t, "users", defs[0].Table)
	assert.True(t, defs[0].Unique)
	assert.Equal(t, []string{"email", "tenant_id"}, defs[0].Columns)
	assert.Equal(t, []*int{nil, nil}, defs[0].Lengths)

	assert.Equal(t, "idx_name", defs[1].Name)
	assert.False(t, defs[1].Unique)
	assert.Equal(t, []string{"name"}, defs[1].Columns)
}

func TestAdapter_ListIndexes_NoIndexes(t *testing.T) {
	ctx := context.Background()
	adp, conn := connectMemory(t)

	require.NoError(t, adp.Exec(ctx, `CREATE TABLE plain (id INTEGER PRIMARY KEY, v VARCHAR)`))

	defs, err := adp.ListIndexes(ctx, conn, "plain", "main")
	require.NoError(t, err)
	assert.NotNil(t, defs)
	assert.Empty(t, defs)
}

func TestAdapter_ExecMutation(t *testing.T) {
	ctx := context.Background()
	adp, conn := connectMemory(t)

	require.NoError(t, adp.Exec(ctx, `CREATE SEQUENCE item_ids START 1`))
	require.NoError(t, adp.Exec(ctx, `
		CREATE TABLE items (
			id INTEGER DEFAULT nextval('item_ids'),
			name VARCHAR
		)
	`))

	got, err := adapter.ExecMutation(ctx, conn, adp, `INSERT INTO items (name) VALUES (?) RETURNING id`, "widget")
	require.NoError(t, err)
	assert.Equal(t, core.GeneratedKey(int64(1)), got)

	got, err = adapter.ExecMutation(ctx, conn, adp, `INSERT INTO items (name) VALUES (?)`, "gadget")
	require.NoError(t, err)
	assert.Equal(t, core.UpdateCount(1), got)

	got, err = adapter.ExecMutation(ctx, conn, adp, `UPDATE items SET name = upper(name)`)
	require.NoError(t, err)
	assert.Equal(t, core.UpdateCount(2), got)
}

func TestAdapter_Metadata(t *testing.T) {
	_, conn := connectMemory(t)

	meta, err := conn.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DuckDB", meta.Product)
	assert.NotEmpty(t, meta.Version)
	assert.Equal(t, core.NormCaseInsensitive, meta.IdentifierCase)
}

func TestIndexColumns(t *testing.T) {
	tests := []struct {
		name    string
		ddl     string
		want    []string
		wantErr bool
	}{
		{
			name: "single column",
			ddl:  "CREATE INDEX idx_name ON users(name);",
			want: []string{"name"},
		},
		{
			name: "composite with spaces",
			ddl:  "CREATE UNIQUE INDEX idx_email ON users (email, tenant_id)",
			want: []string{"email", "tenant_id"},
		},
		{
			name: "schema qualified with ART clause",
			ddl:  "CREATE INDEX idx_a ON main.t USING ART (a, b);",
			want: []string{"a", "b"},
		},
		{
			name: "quoted identifiers",
			ddl:  `CREATE INDEX "Idx" ON "My(Table)" ("Mixed Case", "say ""hi""")`,
			want: []string{"Mixed Case", `say "hi"`},
		},
		{
			name: "expression key",
			ddl:  "CREATE INDEX idx_lower ON users (lower(email), tenant_id)",
			want: []string{"", "tenant_id"},
		},
		{
			name: "sort direction",
			ddl:  "CREATE INDEX idx_d ON t (created_at DESC)",
			want: []string{"created_at"},
		},
		{
			name:    "not an index",
			ddl:     "CREATE TABLE t (a INTEGER)",
			wantErr: true,
		},
		{
			name:    "unterminated",
			ddl:     "CREATE INDEX i ON t (a, b",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := indexColumns(tt.ddl)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandIndexRows(t *testing.T) {
	cur := adapter.NewStaticCursor(
		[]string{"index_name", "is_unique", "sql"},
		nil,
		[][]any{
			{"idx_ab", true, "CREATE UNIQUE INDEX idx_ab ON t(a, b)"},
			{"idx_expr", false, "CREATE INDEX idx_expr ON t((a + 1))"},
		},
	)

	rows, err := expandIndexRows(cur)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"idx_ab", "a", nil, false},
		{"idx_ab", "b", nil, false},
		{"idx_expr", nil, nil, true},
	}, rows)

	missing := adapter.NewStaticCursor([]string{"index_name", "is_unique", "sql"}, nil, [][]any{{"idx", true, nil}})
	_, err = expandIndexRows(missing)
	require.Error(t, err)
}

func TestConnect_WithParams(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	cfg := core.AdapterConfig{
		Path: ":memory:",
		Params: map[string]any{
			"extensions": []any{"json"},
			"settings": map[string]any{
				"threads": "2",
			},
		},
	}

	err := adp.Connect(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = adp.Close() }()

	// Verify extension loaded by checking it's in the loaded extensions list
	var extName string
	err = adp.DB.QueryRowContext(ctx, "SELECT extension_name FROM duckdb_extensions() WHERE loaded = true AND extension_name = 'json'").Scan(&extName)
	require.NoError(t, err, "json extension should be loaded")
	assert.Equal(t, "json", extName)
}

func TestConnect_WithSettings(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	cfg := core.AdapterConfig{
		Path: ":memory:",
		Params: map[string]any{
			"settings": map[string]any{
				"threads": "2",
			},
		},
	}

	err := adp.Connect(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = adp.Close() }()

	// Verify setting was applied
	var threadsSetting string
	require.NoError(t, adp.DB.QueryRowContext(ctx, "SELECT current_setting('threads')").Scan(&threadsSetting))
	assert.Equal(t, "2", threadsSetting)
}

func TestConnect_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		errMsg string
	}{
		{
			name:   "bad extension name",
			params: map[string]any{"extensions": []any{"json; DROP TABLE x"}},
			errMsg: "invalid extension name",
		},
		{
			name:   "bad setting name",
			params: map[string]any{"settings": map[string]any{"threads = 1; --": "2"}},
			errMsg: "invalid setting name",
		},
		{
			name:   "wrong params shape",
			params: map[string]any{"secrets": []any{"oops"}},
			errMsg: "failed to decode adapter params",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adp := New(nil)
			err := adp.Connect(context.Background(), core.AdapterConfig{Path: ":memory:", Params: tt.params})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, adp.Close())
		})
	}
}

func TestConnect_WithNilParams(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	cfg := core.AdapterConfig{
		Path:   ":memory:",
		Params: nil,
	}

	err := adp.Connect(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = adp.Close() }()

	// Should work normally
	assert.NoError(t, adp.Exec(ctx, "SELECT 1"))
}

func TestConnect_WithEmptyParams(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	cfg := core.AdapterConfig{
		Path:   ":memory:",
		Params: map[string]any{},
	}

	err := adp.Connect(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = adp.Close() }()

	// Should work normally
	assert.NoError(t, adp.Exec(ctx, "SELECT 1"))
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("duckdb"))

	factory, ok := adapter.Get("duckdb")
	require.True(t, ok)

	duck, ok := factory(nil).(*Adapter)
	require.True(t, ok)
	assert.Equal(t, "duckdb", duck.DialectName())
	assert.Equal(t, "main", duck.DialectConfig().DefaultSchema)
}
