package duckdb

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// indexCatalogSQL lists the non-primary indexes of a table. duckdb_indexes()
// has no per-column rows, so key columns are read from the index DDL.
const indexCatalogSQL = `
SELECT index_name, is_unique, sql
FROM duckdb_indexes()
WHERE lower(table_name) = lower(CAST(? AS VARCHAR))
	AND schema_name = COALESCE(NULLIF(CAST(? AS VARCHAR), ''), current_schema())
	AND NOT is_primary
ORDER BY index_name`

var catalogColumns = []string{
	adapter.CatalogKeyName,
	adapter.CatalogColumnName,
	adapter.CatalogSubPart,
	adapter.CatalogNonUnique,
}

// ListIndexes reads the table's indexes from duckdb_indexes().
// An empty schema means the connection's current schema.
func (a *Adapter) ListIndexes(ctx context.Context, conn core.Conn, table, schema string) ([]core.IndexDefinition, error) {
	detail := "table " + table

	ident, err := adapter.IdentifierCaseOf(ctx, conn)
	if err != nil {
		return nil, core.NewReadError("list indexes", detail, err)
	}
	storageTable := ident.ToStorage(table)

	a.Logger.Debug("listing indexes", slog.String("table", storageTable), slog.String("schema", schema))

	stmt, err := conn.Prepare(ctx, indexCatalogSQL)
	if err != nil {
		return nil, core.NewReadError("list indexes", detail, err)
	}
	defer func() { _ = stmt.Close() }()

	cur, err := stmt.Query(ctx, storageTable, ident.ToStorage(schema))
	if err != nil {
		return nil, core.NewReadError("list indexes", detail, err)
	}
	defer func() { _ = cur.Close() }()

	rows, err := expandIndexRows(cur)
	if err != nil {
		return nil, core.NewReadError("list indexes", detail, err)
	}

	return adapter.FoldIndexes(adapter.NewStaticCursor(catalogColumns, nil, rows), storageTable, ident, nil)
}

// expandIndexRows turns one row per index into one catalog row per key column.
func expandIndexRows(cur core.RowCursor) ([][]any, error) {
	var rows [][]any
	for cur.Next() {
		name, err := cur.String(0)
		if err != nil {
			return nil, err
		}
		unique, err := cur.Bool(1)
		if err != nil {
			return nil, err
		}
		ddl, err := cur.String(2)
		if err != nil {
			return nil, err
		}
		if !ddl.Valid {
			return nil, fmt.Errorf("index %q has no definition", name.String)
		}

		columns, err := indexColumns(ddl.String)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", name.String, err)
		}
		for _, col := range columns {
			var column any
			if col != "" {
				column = col
			}
			rows = append(rows, []any{name.String, column, nil, !unique.Bool})
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// indexColumns extracts the key columns of a CREATE INDEX statement.
// Expression keys are returned as "".
func indexColumns(ddl string) ([]string, error) {
	on := strings.Index(strings.ToUpper(ddl), " ON ")
	if on < 0 {
		return nil, fmt.Errorf("unrecognised index definition %q", ddl)
	}

	open := indexUnquoted(ddl, on+4, '(')
	if open < 0 {
		return nil, fmt.Errorf("index definition has no column list: %q", ddl)
	}

	parts, err := splitColumnList(ddl[open+1:])
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(parts))
	for i, part := range parts {
		columns[i] = keyColumn(part)
	}
	return columns, nil
}

// indexUnquoted returns the position of the first c at or after start that is
// outside quotes, or -1.
func indexUnquoted(s string, start int, c byte) int {
	var quote byte
	for i := start; i < len(s); i++ {
		switch {
		case quote != 0:
			if s[i] == quote {
				quote = 0
			}
		case s[i] == '"' || s[i] == '\'':
			quote = s[i]
		case s[i] == c:
			return i
		}
	}
	return -1
}

// splitColumnList splits a parenthesised list at top-level commas. s starts
// just after the opening parenthesis.
func splitColumnList(s string) ([]string, error) {
	var (
		parts []string
		quote byte
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case c == ')':
			parts = append(parts, strings.TrimSpace(s[start:i]))
			return parts, nil
		case c == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return nil, fmt.Errorf("unterminated column list")
}

// keyColumn returns the column name of one key part, or "" for an expression.
func keyColumn(part string) string {
	fields := strings.Fields(part)
	if len(fields) == 2 {
		switch strings.ToUpper(fields[1]) {
		case "ASC", "DESC":
			part = fields[0]
		}
	}

	if plainIdentifier.MatchString(part) {
		return part
	}
	if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
		inner := part[1 : len(part)-1]
		if !strings.Contains(strings.ReplaceAll(inner, `""`, ""), `"`) {
			return strings.ReplaceAll(inner, `""`, `"`)
		}
	}
	return ""
}
