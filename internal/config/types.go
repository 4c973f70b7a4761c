// Package config provides shared configuration helpers for leapmeta.
// This package is decoupled from CLI concerns: it knows how to locate a
// project config file and how to default and validate a target.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// DefaultSchemaForType returns the default schema for a database type.
// It asks the registered adapter for its dialect; unknown types fall back to "main".
// MySQL has no default schema: an empty schema means the connection's database.
func DefaultSchemaForType(dbType string) string {
	factory, ok := adapter.Get(dbType)
	if !ok {
		return "main"
	}
	return factory(nil).DialectConfig().DefaultSchema
}

// ValidateTarget checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target is required")
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	if t.Port < 0 || t.Port > 65535 {
		return fmt.Errorf("target port %d out of range", t.Port)
	}

	return nil
}
