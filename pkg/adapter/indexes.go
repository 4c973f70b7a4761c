package adapter

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// Catalog column names read by FoldIndexes. Dialect catalog queries alias
// their columns to these names; lookup is case-insensitive.
const (
	CatalogKeyName    = "key_name"
	CatalogColumnName = "column_name"
	CatalogSubPart    = "sub_part"
	CatalogNonUnique  = "non_unique"
)

type catalogColumns struct {
	keyName, columnName, subPart, nonUnique int
}

func lookupCatalogColumns(cur core.RowCursor) (catalogColumns, error) {
	var cols catalogColumns
	for _, c := range []struct {
		name string
		pos  *int
	}{
		{CatalogKeyName, &cols.keyName},
		{CatalogColumnName, &cols.columnName},
		{CatalogSubPart, &cols.subPart},
		{CatalogNonUnique, &cols.nonUnique},
	} {
		pos, ok := cur.Lookup(c.name)
		if !ok {
			return cols, fmt.Errorf("catalog result has no %s column", c.name)
		}
		*c.pos = pos
	}
	return cols, nil
}

// indexGroup accumulates the rows of the index currently being read.
type indexGroup struct {
	name    string
	unique  bool
	columns []string
	lengths []*int
}

// indexFold folds an ordered catalog row stream into index definitions.
// Rows of one index must be contiguous.
type indexFold struct {
	table   string
	ident   IdentifierCase
	current *indexGroup
	closed  map[string]struct{}
	out     []core.IndexDefinition
}

func newIndexFold(table string, ident IdentifierCase) *indexFold {
	return &indexFold{
		table:  table,
		ident:  ident,
		closed: make(map[string]struct{}),
		out:    []core.IndexDefinition{},
	}
}

func (f *indexFold) add(keyName, column string, length *int, nonUnique bool) error {
	name := f.ident.ToHost(keyName)

	if f.current == nil || f.current.name != name {
		f.closeGroup()
		if _, seen := f.closed[name]; seen {
			return fmt.Errorf("index %q: %w", name, core.ErrCatalogNotGrouped)
		}
		f.current = &indexGroup{name: name, unique: !nonUnique}
	}

	f.current.columns = append(f.current.columns, f.ident.ToHost(column))
	f.current.lengths = append(f.current.lengths, length)
	return nil
}

func (f *indexFold) closeGroup() {
	if f.current == nil {
		return
	}
	g := f.current
	f.out = append(f.out, core.NewIndexDefinition(f.table, g.name, g.unique, g.columns, g.lengths))
	f.closed[g.name] = struct{}{}
	f.current = nil
}

func (f *indexFold) finish() []core.IndexDefinition {
	f.closeGroup()
	return f.out
}

// SkipFunc reports whether rows of the raw catalog key name must be dropped.
type SkipFunc func(keyName string) bool

// FoldIndexes reads the catalog cursor to the end and returns one definition
// per index, in first-seen order. Rows for which skip returns true are
// ignored; skip may be nil. The cursor is not closed.
//
// On any read failure the partial result is discarded and a DatabaseReadError
// is returned.
func FoldIndexes(cur core.RowCursor, table string, ident IdentifierCase, skip SkipFunc) ([]core.IndexDefinition, error) {
	detail := "table " + table
	readErr := func(err error) error {
		return core.NewReadError("list indexes", detail, err)
	}

	cols, err := lookupCatalogColumns(cur)
	if err != nil {
		return nil, readErr(err)
	}

	fold := newIndexFold(table, ident)
	for cur.Next() {
		keyName, err := cur.String(cols.keyName)
		if err != nil {
			return nil, readErr(err)
		}
		if skip != nil && skip(keyName.String) {
			continue
		}
		column, err := cur.String(cols.columnName)
		if err != nil {
			return nil, readErr(err)
		}
		subPart, err := cur.Int64(cols.subPart)
		if err != nil {
			return nil, readErr(err)
		}
		nonUnique, err := cur.Bool(cols.nonUnique)
		if err != nil {
			return nil, readErr(err)
		}

		var length *int
		if subPart.Valid {
			n := int(subPart.Int64)
			length = &n
		}

		// column is NULL for expression indexes; it is kept as ""
		if err := fold.add(keyName.String, column.String, length, nonUnique.Bool); err != nil {
			return nil, readErr(err)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, readErr(err)
	}

	return fold.finish(), nil
}

// CatalogQuery describes a dialect's index catalog query.
type CatalogQuery struct {
	// Table is the storage-case table name recorded on every definition.
	Table string
	SQL   string
	Args  []any
	// Skip drops rows the SQL predicate already excludes, such as the primary key.
	Skip SkipFunc
}

// QueryIndexes prepares and runs a catalog query on conn and folds its rows.
// The statement and cursor are released on every path.
func QueryIndexes(ctx context.Context, conn core.Conn, ident IdentifierCase, q CatalogQuery) ([]core.IndexDefinition, error) {
	detail := "table " + q.Table

	stmt, err := conn.Prepare(ctx, q.SQL)
	if err != nil {
		return nil, core.NewReadError("list indexes", detail, err)
	}
	defer func() { _ = stmt.Close() }()

	cur, err := stmt.Query(ctx, q.Args...)
	if err != nil {
		return nil, core.NewReadError("list indexes", detail, err)
	}
	defer func() { _ = cur.Close() }()

	return FoldIndexes(cur, q.Table, ident, q.Skip)
}
