package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSQLType(t *testing.T) {
	tests := []struct {
		input    string
		expected SQLType
	}{
		{"BIT", TypeBit},
		{"bit(1)", TypeBit},
		{"BOOLEAN", TypeBoolean},
		{"bool", TypeBoolean},
		{"TINYINT", TypeTinyInt},
		{"UNSIGNED BIGINT", TypeBigInt},
		{"int unsigned", TypeInteger},
		{"INT8", TypeBigInt},
		{"DECIMAL(10,2)", TypeDecimal},
		{"VARCHAR(255)", TypeVarchar},
		{"character varying", TypeVarchar},
		{"LONGTEXT", TypeText},
		{"BYTEA", TypeBinary},
		{"DATETIME", TypeTimestamp},
		{"TIMESTAMPTZ", TypeTimestamp},
		{"JSONB", TypeJSON},
		{"", TypeUnknown},
		{"GEOMETRY", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSQLType(tt.input))
		})
	}
}

func TestSQLType_Families(t *testing.T) {
	assert.True(t, TypeBit.IsBoolean())
	assert.True(t, TypeBoolean.IsBoolean())
	assert.False(t, TypeTinyInt.IsBoolean())

	assert.True(t, TypeTinyInt.IsInteger())
	assert.True(t, TypeBigInt.IsInteger())
	assert.False(t, TypeDecimal.IsInteger())

	assert.Equal(t, "BIT", TypeBit.String())
	assert.Equal(t, "UNKNOWN", SQLType(999).String())
}
