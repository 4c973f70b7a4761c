package adapter

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// Resolve interprets the outcome of a statement executed with generated keys
// requested. It returns the first generated key when one exists and is not
// NULL, and the statement's update count otherwise. A failure while probing
// the key set is returned as a DatabaseReadError and never downgraded to an
// update count.
func Resolve(stmt core.Statement, m Marshaller) (core.MutationResult, error) {
	keys, err := stmt.GeneratedKeys()
	if err != nil {
		return core.MutationResult{}, core.NewReadError("generated keys", "", err)
	}
	defer func() { _ = keys.Close() }()

	if keys.Next() {
		v, err := m.Marshal(0, keys.DeclaredType(0), keys)
		if err != nil {
			return core.MutationResult{}, err
		}
		if !v.Null {
			return core.GeneratedKey(v.Value), nil
		}
	}
	if err := keys.Err(); err != nil {
		return core.MutationResult{}, core.NewReadError("generated keys", "", err)
	}

	return core.UpdateCount(stmt.UpdateCount()), nil
}

// ExecMutation prepares query on conn, executes it with generated keys
// requested, and resolves the result. The statement is closed before returning.
func ExecMutation(ctx context.Context, conn core.Conn, m Marshaller, query string, args ...any) (core.MutationResult, error) {
	stmt, err := conn.Prepare(ctx, query)
	if err != nil {
		return core.MutationResult{}, err
	}
	defer func() { _ = stmt.Close() }()

	if _, err := stmt.Execute(ctx, true, args...); err != nil {
		return core.MutationResult{}, fmt.Errorf("mutation failed: %w", err)
	}
	return Resolve(stmt, m)
}
