package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrCurrencyMismatch indicates an operation's currency does not match the
// currency of the account or document it targets.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrInsufficientBalance indicates a posting would drive a non-overdraft
// account's balance negative.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrInvalidStateTransition indicates a document operation was attempted from
// a status that forbids it.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrOverSettlement indicates a settlement amount exceeds the remaining
// capacity of the document or the backing flow.
var ErrOverSettlement = errors.New("settlement exceeds remaining capacity")

// ErrConflict indicates a concurrent mutation conflict; the caller may retry.
var ErrConflict = errors.New("conflicting concurrent modification")

// ErrBusy indicates a bounded lock wait expired; the caller may retry with backoff.
var ErrBusy = errors.New("resource busy")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-like status code alongside the underlying error.
// Repositories use it for storage-layer failures that are not part of the
// recoverable taxonomy above.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that also matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
