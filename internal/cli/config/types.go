// Package config provides configuration management for the leapmeta CLI.
//
// This package extends the shared helpers from internal/config with
// CLI-specific fields: output format, logging, and named environments.
// The target type itself is defined in pkg/core and re-exported here.
package config

import (
	"time"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing pkg/core.
type TargetConfig = core.TargetConfig

// LogConfig holds logging configuration.
type LogConfig struct {
	Level         string        `koanf:"level"`
	SeqURL        string        `koanf:"seq_url"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string               `koanf:"-"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Concurrency  int                  `koanf:"concurrency"`
	Log          LogConfig            `koanf:"log"`
	Target       *TargetConfig        `koanf:"target"`
	Environments map[string]EnvConfig `koanf:"environments"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultEnv         = "dev"
	DefaultOutput      = "table"
	DefaultLogLevel    = "warn"
	DefaultConcurrency = 4
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"table", "json", "yaml", "markdown"}
