package core

import (
	"errors"
	"fmt"
)

// ErrCatalogNotGrouped is reported when catalog rows for one index are not
// contiguous in the result stream.
var ErrCatalogNotGrouped = errors.New("catalog rows are not grouped by index name")

// DatabaseReadError is returned when the driver fails while reading a value,
// running a catalog query, or probing generated keys.
type DatabaseReadError struct {
	Op     string // operation, e.g. "marshal", "list indexes", "generated keys"
	Detail string // column, table, or statement context
	Err    error
}

// NewReadError wraps err as a DatabaseReadError.
func NewReadError(op, detail string, err error) *DatabaseReadError {
	return &DatabaseReadError{Op: op, Detail: detail, Err: err}
}

func (e *DatabaseReadError) Error() string {
	msg := e.Op
	if e.Detail != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Detail)
	}
	if e.Err == nil {
		return fmt.Sprintf("database read failed: %s", msg)
	}
	return fmt.Sprintf("database read failed: %s: %v", msg, e.Err)
}

func (e *DatabaseReadError) Unwrap() error {
	return e.Err
}

// IsReadError reports whether err is or wraps a DatabaseReadError.
func IsReadError(err error) bool {
	var re *DatabaseReadError
	return errors.As(err, &re)
}
