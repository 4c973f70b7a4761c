package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestNewIndexDefinition_CopiesSlices(t *testing.T) {
	columns := []string{"a", "b"}
	lengths := []*int{intPtr(5), nil}

	def := NewIndexDefinition("users", "idx_ab", true, columns, lengths)

	columns[0] = "changed"
	*lengths[0] = 99

	assert.Equal(t, []string{"a", "b"}, def.Columns)
	n, ok := def.Length(0)
	assert.True(t, ok)
	assert.Equal(t, 5, n)
	_, ok = def.Length(1)
	assert.False(t, ok)
	_, ok = def.Length(7)
	assert.False(t, ok)
}

func TestNewIndexDefinition_MismatchedLengthsPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewIndexDefinition("t", "i", false, []string{"a"}, nil)
	})
}

func TestMutationResult(t *testing.T) {
	key := GeneratedKey(int64(42))
	assert.True(t, key.HasKey())
	assert.Equal(t, int64(42), key.Value())
	assert.Equal(t, "generated key 42", key.String())

	count := UpdateCount(3)
	assert.False(t, count.HasKey())
	assert.Equal(t, int64(3), count.Value())
	assert.Equal(t, "3 rows affected", count.String())
}

func TestMarshalledValue(t *testing.T) {
	assert.Nil(t, NullValue().Interface())
	assert.Equal(t, "NULL", NullValue().String())
	assert.Equal(t, int64(1), ValueOf(int64(1)).Interface())
	assert.Equal(t, "1", ValueOf(int64(1)).String())
}

func TestDatabaseReadError(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(NewReadError("list indexes", "table users", cause))

	assert.Equal(t, "database read failed: list indexes table users: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsReadError(err))

	var re *DatabaseReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "list indexes", re.Op)

	assert.False(t, IsReadError(cause))
	assert.Equal(t, "database read failed: marshal", NewReadError("marshal", "", nil).Error())
}
