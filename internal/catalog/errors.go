package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ConflictError reports a natural-key uniqueness violation that
// surfaced despite the find-or-create check. It aborts the run: another
// writer touched the tables mid-import, and continuing would either
// duplicate or silently drop data.
type ConflictError struct {
	Table string
	Key   string
	Err   error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("uniqueness conflict on %s (key %q): %v", e.Table, e.Key, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// IsConflict returns true if err is a natural-key conflict.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// wrapInsertErr classifies an insert failure, turning SQLite uniqueness
// violations into ConflictErrors with table and key context.
func wrapInsertErr(table, key string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &ConflictError{Table: table, Key: key, Err: err}
	}
	return fmt.Errorf("inserting into %s (key %q): %w", table, key, err)
}
