package core

import "fmt"

// MutationKind tags the variant held by a MutationResult.
type MutationKind int

const (
	// MutationUpdateCount means the statement produced no generated key.
	MutationUpdateCount MutationKind = iota
	// MutationGeneratedKey means the database generated a key for the statement.
	MutationGeneratedKey
)

// MutationResult is the outcome of one mutating statement: either the key the
// database generated or the number of affected rows.
type MutationResult struct {
	Kind  MutationKind
	Key   any
	Count int64
}

// GeneratedKey returns a result holding a generated key.
func GeneratedKey(v any) MutationResult {
	return MutationResult{Kind: MutationGeneratedKey, Key: v}
}

// UpdateCount returns a result holding an affected row count.
func UpdateCount(n int64) MutationResult {
	return MutationResult{Kind: MutationUpdateCount, Count: n}
}

// HasKey reports whether the result carries a generated key.
func (r MutationResult) HasKey() bool {
	return r.Kind == MutationGeneratedKey
}

// Value returns the key or the update count, whichever the result holds.
func (r MutationResult) Value() any {
	if r.HasKey() {
		return r.Key
	}
	return r.Count
}

func (r MutationResult) String() string {
	if r.HasKey() {
		return fmt.Sprintf("generated key %v", r.Key)
	}
	return fmt.Sprintf("%d rows affected", r.Count)
}
