package config

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/leapmeta/internal/config"
	"github.com/leapstack-labs/leapmeta/pkg/core"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// envPrefix is the prefix of environment variables read into the config.
const envPrefix = "LEAPMETA_"

// flagKeys maps CLI flag names to config keys. Flags not listed map
// kebab-case to snake_case.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"seq-url":   "log.seq_url",
}

// skippedFlags are consumed by the loader itself. Target fields are applied
// after the environment merge so they beat every environment.
var skippedFlags = map[string]bool{
	"config":   true,
	"target":   true,
	"type":     true,
	"database": true,
	"host":     true,
	"port":     true,
	"user":     true,
	"schema":   true,
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// findConfigFile finds the config file to use.
// Priority: explicit path > leapmeta.yaml > leapmeta.yml in the project root.
func findConfigFile(explicit, projectRoot string) string {
	if explicit != "" {
		return explicit
	}
	return intconfig.FindConfigFile(projectRoot)
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Directory of an explicit config file
//  2. Search upward from CWD for leapmeta.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := intconfig.FindProjectRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithTarget(cfgFile, "", flags)
}

// LoadConfigWithTarget loads configuration with an optional target override.
// The targetOverride parameter names the environment whose target is merged
// over the base target; it takes precedence over the environment setting.
func LoadConfigWithTarget(cfgFile string, targetOverride string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile)

	// A database path given as a flag is relative to CWD, not the project root.
	var flagDatabase string
	if flags != nil && flags.Changed("database") {
		if v, _ := flags.GetString("database"); v != "" {
			flagDatabase = absDatabasePath(v)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"environment": DefaultEnv,
		"verbose":     false,
		"output":      DefaultOutput,
		"concurrency": DefaultConcurrency,
		"log.level":   DefaultLogLevel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile, projectRoot)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (LEAPMETA_ prefix)
	// Transform: LEAPMETA_OUTPUT -> output, LEAPMETA_TARGET__PASSWORD -> target.password
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed || skippedFlags[f.Name] {
				return "", nil
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	// Determine which environment to use for target selection
	envForTarget := cfg.Environment
	if targetOverride != "" {
		envForTarget = targetOverride
	}

	// Merge environment target with base target
	if envCfg, ok := cfg.Environments[envForTarget]; ok && envCfg.Target != nil {
		cfg.Target = MergeTargetConfig(cfg.Target, envCfg.Target)
	}

	if flags != nil {
		cfg.Target = MergeTargetConfig(cfg.Target, flagTarget(flags))
	}

	// Initialize default target if not specified
	if cfg.Target == nil {
		cfg.Target = &core.TargetConfig{Type: "sqlite", Database: ":memory:"}
	}

	intconfig.ApplyTargetDefaults(cfg.Target)
	expandTargetEnvVars(cfg.Target)

	if flagDatabase != "" {
		cfg.Target.Database = flagDatabase
	} else if isFileTarget(cfg.Target.Type) {
		cfg.Target.Database = resolvePathRelativeTo(cfg.Target.Database, projectRoot)
	}

	if err := cfg.ValidateTarget(); err != nil {
		return nil, fmt.Errorf("invalid target configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey converts an environment variable name to a config key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// flagTarget collects the target fields set explicitly on the command line.
func flagTarget(flags *pflag.FlagSet) *core.TargetConfig {
	t := &core.TargetConfig{}
	set := false
	str := func(name string, dst *string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
			set = true
		}
	}
	str("type", &t.Type)
	str("host", &t.Host)
	str("user", &t.User)
	str("schema", &t.Schema)
	if flags.Lookup("port") != nil && flags.Changed("port") {
		t.Port, _ = flags.GetInt("port")
		set = true
	}
	if !set {
		return nil
	}
	return t
}

// isFileTarget reports whether the target type stores its database in a local file.
func isFileTarget(dbType string) bool {
	return dbType == "sqlite" || dbType == "duckdb"
}

// absDatabasePath makes a file database path absolute. :memory: is kept as is.
func absDatabasePath(path string) string {
	if path == ":memory:" {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, :memory:, or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context.
// Without one, it returns the defaults with an in-memory SQLite target.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		Environment:  DefaultEnv,
		OutputFormat: DefaultOutput,
		Concurrency:  DefaultConcurrency,
		Log:          LogConfig{Level: DefaultLogLevel},
		Target:       &TargetConfig{Type: "sqlite", Database: ":memory:", Schema: "main"},
	}
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *core.TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	for key, v := range t.Options {
		t.Options[key] = expandEnvVars(v)
	}
}

// MergeTargetConfig merges two target configs, with override taking precedence.
func MergeTargetConfig(base, override *core.TargetConfig) *core.TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	// Start with a copy of base
	merged := &core.TargetConfig{
		Type:     base.Type,
		Database: base.Database,
		Host:     base.Host,
		Port:     base.Port,
		User:     base.User,
		Password: base.Password,
		Schema:   base.Schema,
		Options:  make(map[string]string, len(base.Options)+len(override.Options)),
		Params:   make(map[string]any, len(base.Params)+len(override.Params)),
	}
	maps.Copy(merged.Options, base.Options)
	maps.Copy(merged.Params, base.Params)

	// Apply overrides
	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}

	// Merge options and params (override takes precedence)
	maps.Copy(merged.Options, override.Options)
	maps.Copy(merged.Params, override.Params)

	return merged
}
