package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// KeyStrategy selects how a dialect returns generated keys through database/sql,
// which has no generated-keys result set of its own.
type KeyStrategy int

const (
	// KeysLastInsertID reads sql.Result.LastInsertId after INSERT and REPLACE statements.
	// A zero id means the statement generated no key.
	KeysLastInsertID KeyStrategy = iota
	// KeysReturning runs statements with a RETURNING clause as queries and
	// treats the returned rows as the generated keys.
	KeysReturning
	// KeysNone never reports generated keys.
	KeysNone
)

// GeneratedKeyColumn names the single column of a LastInsertId key set.
const GeneratedKeyColumn = "GENERATED_KEY"

// MetadataProbe reads dialect-specific metadata from a live connection.
type MetadataProbe func(ctx context.Context, conn *sql.Conn) (core.ConnMetadata, error)

var errNotExecuted = errors.New("statement has not been executed")

// SQLConn implements core.Conn over a dedicated *sql.Conn.
type SQLConn struct {
	conn  *sql.Conn
	keys  KeyStrategy
	probe MetadataProbe
	meta  *core.ConnMetadata
}

// NewSQLConn wraps conn. probe may be nil.
func NewSQLConn(conn *sql.Conn, keys KeyStrategy, probe MetadataProbe) *SQLConn {
	return &SQLConn{conn: conn, keys: keys, probe: probe}
}

// Prepare creates a prepared statement on the connection.
func (c *SQLConn) Prepare(ctx context.Context, query string) (core.Statement, error) {
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	return &SQLStatement{stmt: stmt, query: query, keys: c.keys, updateCount: -1}, nil
}

// Metadata probes the connection once and caches the result.
func (c *SQLConn) Metadata(ctx context.Context) (core.ConnMetadata, error) {
	if c.meta != nil {
		return *c.meta, nil
	}
	meta := core.ConnMetadata{IdentifierCase: core.NormCaseInsensitive}
	if c.probe != nil {
		var err error
		if meta, err = c.probe(ctx, c.conn); err != nil {
			return core.ConnMetadata{}, err
		}
	}
	c.meta = &meta
	return meta, nil
}

// Close returns the connection to the pool.
func (c *SQLConn) Close() error {
	return c.conn.Close()
}

// SQLStatement implements core.Statement over *sql.Stmt.
type SQLStatement struct {
	stmt  *sql.Stmt
	query string
	keys  KeyStrategy

	executed    bool
	updateCount int64
	keyColumns  []string
	keyTypes    []core.SQLType
	keyRows     [][]any
	keysErr     error
}

var returningClause = regexp.MustCompile(`(?i)\bRETURNING\b`)

// Execute runs the statement and records its update count and generated keys.
func (s *SQLStatement) Execute(ctx context.Context, returnGeneratedKeys bool, args ...any) (bool, error) {
	s.executed, s.updateCount = false, -1
	s.keyColumns, s.keyTypes, s.keyRows, s.keysErr = nil, nil, nil, nil

	if returnGeneratedKeys && s.keys == KeysReturning && returningClause.MatchString(s.query) {
		if err := s.executeReturning(ctx, args); err != nil {
			return false, err
		}
		return true, nil
	}

	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		return false, fmt.Errorf("failed to execute statement: %w", err)
	}
	s.executed = true

	affected, affectedErr := res.RowsAffected()
	if affectedErr == nil {
		s.updateCount = affected
	}

	// The last insert id is per connection and survives statements that
	// insert nothing, so it only belongs to this statement when rows changed.
	if returnGeneratedKeys && s.keys == KeysLastInsertID && isInsert(s.query) {
		if affectedErr != nil {
			s.keysErr = affectedErr
			return false, nil
		}
		if affected == 0 {
			return false, nil
		}
		id, err := res.LastInsertId()
		switch {
		case err != nil:
			s.keysErr = err
		case id != 0:
			s.keyColumns = []string{GeneratedKeyColumn}
			s.keyTypes = []core.SQLType{core.TypeBigInt}
			s.keyRows = [][]any{{id}}
		}
	}
	return false, nil
}

// executeReturning buffers the rows of a RETURNING statement as its key set.
func (s *SQLStatement) executeReturning(ctx context.Context, args []any) error {
	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	cur, err := newSQLCursor(rows)
	if err != nil {
		return err
	}
	defer func() { _ = cur.Close() }()
	cur.loadTypes()

	var buffered [][]any
	for cur.Next() {
		buffered = append(buffered, cur.current)
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read returned rows: %w", err)
	}

	s.executed = true
	s.updateCount = int64(len(buffered))
	s.keyColumns, s.keyTypes, s.keyRows = cur.columns, cur.types, buffered
	return nil
}

// Query runs the statement and returns a cursor over its rows.
func (s *SQLStatement) Query(ctx context.Context, args ...any) (core.RowCursor, error) {
	//nolint:rowserrcheck // rows.Err() is surfaced through the cursor's Err
	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return newSQLCursor(rows)
}

// UpdateCount returns the rows affected by the last Execute, or -1.
func (s *SQLStatement) UpdateCount() int64 {
	return s.updateCount
}

// GeneratedKeys returns a fresh cursor over the keys of the last Execute.
func (s *SQLStatement) GeneratedKeys() (core.RowCursor, error) {
	if !s.executed {
		return nil, errNotExecuted
	}
	if s.keysErr != nil {
		return nil, s.keysErr
	}
	return NewStaticCursor(s.keyColumns, s.keyTypes, s.keyRows), nil
}

// Close releases the prepared statement.
func (s *SQLStatement) Close() error {
	return s.stmt.Close()
}

// isInsert reports whether the statement's leading keyword can generate a key.
func isInsert(query string) bool {
	fields := strings.Fields(strings.TrimLeft(query, " \t\r\n("))
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "INSERT", "REPLACE":
		return true
	default:
		return false
	}
}

var (
	_ core.Conn      = (*SQLConn)(nil)
	_ core.Statement = (*SQLStatement)(nil)
)
