package config

import (
	"fmt"
	"slices"
	"strings"

	intconfig "github.com/leapstack-labs/leapmeta/internal/config"
)

// DefaultSchemaForType returns the default schema for a database type.
// This is a convenience wrapper that delegates to the shared config function.
func DefaultSchemaForType(dbType string) string {
	return intconfig.DefaultSchemaForType(dbType)
}

// Validate checks the CLI settings. The target is validated separately by ValidateTarget.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// ValidateTarget checks the resolved target against the adapter registry.
func (c *Config) ValidateTarget() error {
	return intconfig.ValidateTarget(c.Target)
}
