package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// IdentifierCase converts identifiers between the case the database stores
// them in and the case the host model expects (lower case unless quoted).
type IdentifierCase struct {
	Mode core.NormalizationStrategy
}

// IdentifierCaseOf reads the storage case mode from the connection metadata.
func IdentifierCaseOf(ctx context.Context, conn core.Conn) (IdentifierCase, error) {
	meta, err := conn.Metadata(ctx)
	if err != nil {
		return IdentifierCase{}, fmt.Errorf("failed to read connection metadata: %w", err)
	}
	return IdentifierCase{Mode: meta.IdentifierCase}, nil
}

// ToStorage converts a host identifier to the database storage case.
func (c IdentifierCase) ToStorage(name string) string {
	switch c.Mode {
	case core.NormUppercase:
		return strings.ToUpper(name)
	case core.NormLowercase:
		return strings.ToLower(name)
	default:
		return name
	}
}

// ToHost converts a catalog-reported identifier to host case.
// Upper-case storage folds all-upper names to lower case; mixed-case names
// were quoted when created and are kept.
func (c IdentifierCase) ToHost(name string) string {
	if c.Mode == core.NormUppercase && isUpperCase(name) {
		return strings.ToLower(name)
	}
	return name
}

// isUpperCase reports whether name has at least one letter and no lower-case letters.
func isUpperCase(name string) bool {
	return strings.ToUpper(name) == name && strings.ToLower(name) != name
}
