package table

import (
	"errors"
	"fmt"

	"github.com/roach88/notestore/internal/ir"
)

// ErrNotFound is the sentinel matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports that an identifier has no entry in a table, either
// because it never existed or because it was already removed.
type NotFoundError struct {
	// Kind names the table, e.g. "note" or "event".
	Kind string

	// ID is the identifier that was looked up.
	ID ir.ID
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, ErrNotFound)
}

// Is makes errors.Is(err, ErrNotFound) true for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound returns true if err is or wraps a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
