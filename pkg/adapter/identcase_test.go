package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierCase_ToStorage(t *testing.T) {
	tests := []struct {
		name     string
		mode     core.NormalizationStrategy
		input    string
		expected string
	}{
		{"upper", core.NormUppercase, "users", "USERS"},
		{"lower", core.NormLowercase, "Users", "users"},
		{"sensitive keeps case", core.NormCaseSensitive, "Users", "Users"},
		{"insensitive keeps case", core.NormCaseInsensitive, "Users", "Users"},
		{"unknown mode passes through", core.NormalizationStrategy(42), "Users", "Users"},
		{"empty stays empty", core.NormUppercase, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic := IdentifierCase{Mode: tt.mode}
			assert.Equal(t, tt.expected, ic.ToStorage(tt.input))
		})
	}
}

func TestIdentifierCase_ToHost(t *testing.T) {
	tests := []struct {
		name     string
		mode     core.NormalizationStrategy
		input    string
		expected string
	}{
		{"upper folds all-upper", core.NormUppercase, "IDX_USERS_EMAIL", "idx_users_email"},
		{"upper keeps mixed", core.NormUppercase, "IdxUsers", "IdxUsers"},
		{"upper keeps digits only", core.NormUppercase, "123", "123"},
		{"lower keeps", core.NormLowercase, "idx_users", "idx_users"},
		{"sensitive keeps upper", core.NormCaseSensitive, "IDX", "IDX"},
		{"unknown mode passes through", core.NormalizationStrategy(-1), "IDX", "IDX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic := IdentifierCase{Mode: tt.mode}
			assert.Equal(t, tt.expected, ic.ToHost(tt.input))
		})
	}
}

type metadataConn struct {
	core.Conn
	meta core.ConnMetadata
	err  error
}

func (c metadataConn) Metadata(context.Context) (core.ConnMetadata, error) {
	return c.meta, c.err
}

func TestIdentifierCaseOf(t *testing.T) {
	ic, err := IdentifierCaseOf(context.Background(), metadataConn{meta: core.ConnMetadata{IdentifierCase: core.NormUppercase}})
	require.NoError(t, err)
	assert.Equal(t, core.NormUppercase, ic.Mode)

	_, err = IdentifierCaseOf(context.Background(), metadataConn{err: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read connection metadata")
}
