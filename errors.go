// Package relgen holds the runtime contract shared by generated data-access
// code: the error taxonomy that model operations return to their callers.
package relgen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for generated model operations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("relgen: row not found")

	// ErrUniqueViolation is returned when an insert or update breaks a
	// uniqueness constraint.
	ErrUniqueViolation = errors.New("relgen: unique constraint violation")

	// ErrOpFailed is the base error for failed model operations
	// (create, update, delete, count).
	ErrOpFailed = errors.New("relgen: operation failed")
)

// NotFoundError is returned by generated models when the target row of a
// lookup or mutation does not exist. Mutations return it before any write
// is performed.
type NotFoundError struct {
	table string
	id    any // the ID that was searched for, if known
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("relgen: %s row not found (id=%v)", e.table, e.id)
	}
	return fmt.Sprintf("relgen: %s row not found", e.table)
}

// Is reports whether the target matches the NotFound sentinel.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table the lookup ran against.
func (e *NotFoundError) Table() string { return e.table }

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any { return e.id }

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// NewNotFoundErrorWithID returns a new NotFoundError carrying the searched ID.
func NewNotFoundErrorWithID(table string, id any) *NotFoundError {
	return &NotFoundError{table: table, id: id}
}

// IsNotFound reports whether the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// UniqueViolationError is returned by generated models when the database
// rejects a write because of a uniqueness constraint.
type UniqueViolationError struct {
	table string
	wrap  error
}

// Error returns the error string.
func (e *UniqueViolationError) Error() string {
	if e.wrap != nil {
		return fmt.Sprintf("relgen: %s unique constraint violation: %v", e.table, e.wrap)
	}
	return fmt.Sprintf("relgen: %s unique constraint violation", e.table)
}

// Is reports whether the target matches the UniqueViolation sentinel.
func (e *UniqueViolationError) Is(err error) bool {
	return err == ErrUniqueViolation
}

// Unwrap returns the underlying driver error.
func (e *UniqueViolationError) Unwrap() error { return e.wrap }

// Table returns the table the write ran against.
func (e *UniqueViolationError) Table() string { return e.table }

// NewUniqueViolationError returns a new UniqueViolationError wrapping the
// driver error that reported the violation.
func NewUniqueViolationError(table string, wrap error) *UniqueViolationError {
	return &UniqueViolationError{table: table, wrap: wrap}
}

// IsUniqueViolation reports whether the error is a UniqueViolationError.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var e *UniqueViolationError
	return errors.As(err, &e) || errors.Is(err, ErrUniqueViolation)
}

// Op identifies a generated model operation.
type Op string

// Model operations that can fail with an OpError.
const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpCount  Op = "count"
)

// OpError is returned by generated models when a database operation fails
// for a reason other than a missing row or a uniqueness violation. The
// enclosing transaction has been rolled back by the time it is returned.
type OpError struct {
	Table string
	Op    Op
	Err   error
}

// Error returns the error string.
func (e *OpError) Error() string {
	return fmt.Sprintf("relgen: %s %s failed: %v", e.Op, e.Table, e.Err)
}

// Is reports whether the target matches the OpFailed sentinel.
func (e *OpError) Is(err error) bool {
	return err == ErrOpFailed
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error { return e.Err }

// NewOpError returns a new OpError for the given table and operation.
func NewOpError(table string, op Op, err error) *OpError {
	return &OpError{Table: table, Op: op, Err: err}
}

// IsOpError reports whether the error is an OpError, optionally for a
// specific operation (pass "" to match any).
func IsOpError(err error, op Op) bool {
	if err == nil {
		return false
	}
	var e *OpError
	if !errors.As(err, &e) {
		return false
	}
	return op == "" || e.Op == op
}
