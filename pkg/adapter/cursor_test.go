package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCursor(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cur := NewStaticCursor(
		[]string{"ID", "Name", "Created", "Payload"},
		[]core.SQLType{core.TypeBigInt, core.TypeVarchar, core.TypeTimestamp, core.TypeBlob},
		[][]any{
			{int64(1), "alice", ts, []byte{0xff}},
			{nil, nil, nil, nil},
		},
	)

	_, err := cur.Value(0)
	require.Error(t, err, "reading before Next should fail")

	pos, ok := cur.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	_, ok = cur.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, core.TypeTimestamp, cur.DeclaredType(2))
	assert.Equal(t, core.TypeUnknown, cur.DeclaredType(9))

	require.True(t, cur.Next())
	id, err := cur.Int64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Int64)
	assert.True(t, id.Valid)

	name, err := cur.String(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", name.String)

	created, err := cur.Time(2)
	require.NoError(t, err)
	assert.Equal(t, ts, created.Time)

	payload, err := cur.Bytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, payload)

	_, err = cur.Value(4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	require.True(t, cur.Next())
	id, err = cur.Int64(0)
	require.NoError(t, err)
	assert.False(t, id.Valid)
	payload, err = cur.Bytes(3)
	require.NoError(t, err)
	assert.Nil(t, payload)

	assert.False(t, cur.Next())
	require.NoError(t, cur.Err())
	require.NoError(t, cur.Close())
}

func TestStaticCursor_BytesRejectsNumbers(t *testing.T) {
	cur := NewStaticCursor([]string{"n"}, nil, [][]any{{int64(1)}})
	require.True(t, cur.Next())

	_, err := cur.Bytes(0)
	require.Error(t, err)
}

func TestSQLCursor(t *testing.T) {
	conn, mock := newMockConn(t, KeysNone)
	ctx := context.Background()

	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("id").OfType("BIGINT", int64(0)),
		mock.NewColumn("flag").OfType("BIT", []byte{}),
	).AddRow(int64(1), []byte("1")).AddRow(int64(2), nil)
	mock.ExpectPrepare("SELECT id, flag FROM t").ExpectQuery().WillReturnRows(rows)

	stmt, err := conn.Prepare(ctx, "SELECT id, flag FROM t")
	require.NoError(t, err)
	defer func() { _ = stmt.Close() }()

	cur, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer func() { _ = cur.Close() }()

	assert.Equal(t, []string{"id", "flag"}, cur.Columns())
	assert.Equal(t, core.TypeBigInt, cur.DeclaredType(0))
	assert.Equal(t, core.TypeBit, cur.DeclaredType(1))

	require.True(t, cur.Next())
	flag, err := cur.Bool(1)
	require.NoError(t, err)
	assert.True(t, flag.Valid)
	assert.True(t, flag.Bool)

	require.True(t, cur.Next())
	flag, err = cur.Bool(1)
	require.NoError(t, err)
	assert.False(t, flag.Valid)

	assert.False(t, cur.Next())
	assert.NoError(t, cur.Err())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCursor_RowError(t *testing.T) {
	conn, mock := newMockConn(t, KeysNone)
	ctx := context.Background()
	boom := errors.New("connection lost")

	rows := mock.NewRows([]string{"id"}).AddRow(1).AddRow(2).RowError(1, boom)
	mock.ExpectPrepare("SELECT id").ExpectQuery().WillReturnRows(rows)

	stmt, err := conn.Prepare(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	defer func() { _ = stmt.Close() }()

	cur, err := stmt.Query(ctx)
	require.NoError(t, err)
	defer func() { _ = cur.Close() }()

	require.True(t, cur.Next())
	assert.False(t, cur.Next())
	assert.ErrorIs(t, cur.Err(), boom)
}

func TestSQLCursor_ColumnTypesFailure(t *testing.T) {
	conn, mock := newMockConn(t, KeysNone)
	ctx := context.Background()

	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("flag").OfType("BIT", []byte{}),
	).AddRow([]byte{1})
	mock.ExpectPrepare("SELECT flag").ExpectQuery().WillReturnRows(rows)

	stmt, err := conn.Prepare(ctx, "SELECT flag FROM t")
	require.NoError(t, err)
	defer func() { _ = stmt.Close() }()

	cur, err := stmt.Query(ctx)
	require.NoError(t, err)
	require.NoError(t, cur.Close())

	assert.Equal(t, core.TypeUnknown, cur.DeclaredType(0))
	assert.False(t, cur.Next())
	require.Error(t, cur.Err())
	assert.Contains(t, cur.Err().Error(), "failed to read column types")
}
