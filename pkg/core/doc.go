// Package core defines the shared language of the leapmeta system.
//
// This package contains:
//   - Domain records (IndexDefinition, MutationResult, MarshalledValue)
//   - Capability interfaces consumed from the driver layer (Conn, Statement, RowCursor)
//   - Configuration types (AdapterConfig, TargetConfig, DialectConfig)
//   - The DatabaseReadError kind
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
