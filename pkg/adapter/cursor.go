package adapter

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

var errNoRow = errors.New("cursor is not positioned on a row")

// rowValues holds the raw driver values of the current row and implements
// the typed getters shared by every cursor.
type rowValues struct {
	columns []string
	types   []core.SQLType
	current []any
}

func (r *rowValues) Columns() []string {
	return r.columns
}

func (r *rowValues) Lookup(name string) (int, bool) {
	for i, col := range r.columns {
		if strings.EqualFold(col, name) {
			return i, true
		}
	}
	return -1, false
}

func (r *rowValues) DeclaredType(pos int) core.SQLType {
	if pos < 0 || pos >= len(r.types) {
		return core.TypeUnknown
	}
	return r.types[pos]
}

func (r *rowValues) Value(pos int) (any, error) {
	if r.current == nil {
		return nil, errNoRow
	}
	if pos < 0 || pos >= len(r.current) {
		return nil, fmt.Errorf("column %d out of range (%d columns)", pos, len(r.current))
	}
	return r.current[pos], nil
}

func (r *rowValues) Bool(pos int) (sql.NullBool, error) {
	var v sql.NullBool
	return v, r.scan(pos, &v)
}

func (r *rowValues) Int64(pos int) (sql.NullInt64, error) {
	var v sql.NullInt64
	return v, r.scan(pos, &v)
}

func (r *rowValues) Float64(pos int) (sql.NullFloat64, error) {
	var v sql.NullFloat64
	return v, r.scan(pos, &v)
}

func (r *rowValues) String(pos int) (sql.NullString, error) {
	var v sql.NullString
	return v, r.scan(pos, &v)
}

func (r *rowValues) Time(pos int) (sql.NullTime, error) {
	var v sql.NullTime
	return v, r.scan(pos, &v)
}

func (r *rowValues) Bytes(pos int) ([]byte, error) {
	raw, err := r.Value(pos)
	if err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []byte:
		return append([]byte{}, v...), nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot read %T as bytes", raw)
	}
}

func (r *rowValues) scan(pos int, dest sql.Scanner) error {
	raw, err := r.Value(pos)
	if err != nil {
		return err
	}
	if err := dest.Scan(raw); err != nil {
		return fmt.Errorf("column %q: %w", r.columns[pos], err)
	}
	return nil
}

// sqlCursor is a RowCursor over *sql.Rows.
type sqlCursor struct {
	rowValues
	rows *sql.Rows
	err  error
}

func newSQLCursor(rows *sql.Rows) (*sqlCursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	return &sqlCursor{
		rowValues: rowValues{columns: cols},
		rows:      rows,
	}, nil
}

// DeclaredType reads the driver column types on first use. A failure to
// read them ends the cursor and is reported by Err.
func (c *sqlCursor) DeclaredType(pos int) core.SQLType {
	c.loadTypes()
	return c.rowValues.DeclaredType(pos)
}

func (c *sqlCursor) loadTypes() {
	if c.types != nil {
		return
	}
	c.types = make([]core.SQLType, len(c.columns))
	colTypes, err := c.rows.ColumnTypes()
	if err != nil {
		if c.err == nil {
			c.err = fmt.Errorf("failed to read column types: %w", err)
		}
		return
	}
	for i, ct := range colTypes {
		c.types[i] = core.ParseSQLType(ct.DatabaseTypeName())
	}
}

func (c *sqlCursor) Next() bool {
	c.current = nil
	if c.err != nil || !c.rows.Next() {
		return false
	}

	values := make([]any, len(c.columns))
	ptrs := make([]any, len(c.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = err
		return false
	}

	c.current = values
	return true
}

func (c *sqlCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *sqlCursor) Close() error {
	return c.rows.Close()
}

// StaticCursor is a RowCursor over rows held in memory.
type StaticCursor struct {
	rowValues
	rows [][]any
	next int
}

// NewStaticCursor returns a cursor over rows. types may be nil, in which case
// every column is TypeUnknown.
func NewStaticCursor(columns []string, types []core.SQLType, rows [][]any) *StaticCursor {
	if types == nil {
		types = make([]core.SQLType, len(columns))
	}
	return &StaticCursor{
		rowValues: rowValues{columns: columns, types: types},
		rows:      rows,
	}
}

func (c *StaticCursor) Next() bool {
	if c.next >= len(c.rows) {
		c.current = nil
		return false
	}
	c.current = c.rows[c.next]
	c.next++
	return true
}

func (c *StaticCursor) Err() error { return nil }

func (c *StaticCursor) Close() error {
	c.next = len(c.rows)
	c.current = nil
	return nil
}

var (
	_ core.RowCursor = (*sqlCursor)(nil)
	_ core.RowCursor = (*StaticCursor)(nil)
)
