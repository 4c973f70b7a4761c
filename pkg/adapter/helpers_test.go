package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/stretchr/testify/require"
)

// failingCursor yields the wrapped rows, then stops with err.
type failingCursor struct {
	*StaticCursor
	err    error
	failed bool
}

func (c *failingCursor) Next() bool {
	if c.StaticCursor.Next() {
		return true
	}
	c.failed = true
	return false
}

func (c *failingCursor) Err() error {
	if c.failed {
		return c.err
	}
	return nil
}

// fakeStatement serves canned generated keys and update counts.
type fakeStatement struct {
	core.Statement
	keys    core.RowCursor
	keysErr error
	count   int64
}

func (s *fakeStatement) GeneratedKeys() (core.RowCursor, error) {
	return s.keys, s.keysErr
}

func (s *fakeStatement) UpdateCount() int64 {
	return s.count
}

// catalogCursor builds a cursor shaped like the index catalog query.
func catalogCursor(rows ...[]any) *StaticCursor {
	return NewStaticCursor(
		[]string{"Key_name", "Column_name", "Sub_part", "Non_unique"},
		nil,
		rows,
	)
}

func newMockConn(t *testing.T, keys KeyStrategy) (*SQLConn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewSQLConn(conn, keys, nil), mock
}

func intPtr(n int) *int { return &n }
