package core

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data; the runtime behavior lives in the adapter packages.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "mysql", "postgres")
	Name string

	// Identifiers defines quoting and normalization rules
	Identifiers IdentifierConfig

	// DefaultSchema is the default schema name ("public" for Postgres, "main" for SQLite)
	DefaultSchema string

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle
}

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Snowflake, Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly (MySQL on case-sensitive filesystems).
	NormCaseSensitive
	// NormCaseInsensitive stores identifiers as written and compares them folded (SQLite, DuckDB).
	NormCaseInsensitive
)

// String returns the string representation of NormalizationStrategy.
func (n NormalizationStrategy) String() string {
	switch n {
	case NormLowercase:
		return "lower"
	case NormUppercase:
		return "upper"
	case NormCaseSensitive:
		return "sensitive"
	case NormCaseInsensitive:
		return "insensitive"
	default:
		return "unknown"
	}
}

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (DuckDB, MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `
	QuoteEnd      string                // End quote character (usually same as Quote)
	Escape        string                // Escape sequence: "", ``
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}
