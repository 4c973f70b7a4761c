package config

import (
	"strings"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// Default ports for network databases.
const (
	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432
)

// DefaultPortForType returns the default port for a database type, or 0 for file databases.
func DefaultPortForType(dbType string) int {
	switch strings.ToLower(dbType) {
	case "mysql":
		return DefaultMySQLPort
	case "postgres":
		return DefaultPostgresPort
	default:
		return 0
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}

	t.Type = strings.ToLower(t.Type)

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if t.Port == 0 {
		t.Port = DefaultPortForType(t.Type)
	}
}
