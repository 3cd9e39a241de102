package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a referenced entity could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrBadReference indicates a code/uuid pair that resolves to different entities.
var ErrBadReference = errors.New("code does not match referenced entity")

// ErrBadRevision indicates an optimistic-concurrency conflict; the caller must
// re-fetch the entity and retry with the current revision token.
var ErrBadRevision = errors.New("revision token does not match current entity state")

// ErrRuleViolation indicates a broken accounting invariant (unbalanced entry,
// parent cycle, category mismatch, in-use deletion target, ...).
var ErrRuleViolation = errors.New("accounting rule violation")

// ErrInvalidOperation indicates an operation not permitted in the current
// ledger state (e.g. bootstrap on a non-empty ledger, mutating a locked entry).
var ErrInvalidOperation = errors.New("operation not permitted in current state")

// ErrNotImplemented marks business rules that are explicitly stubbed.
var ErrNotImplemented = errors.New("not implemented")

// ErrInternal indicates an unexpected failure, typically from storage.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with an HTTP-ish status code and a
// caller-facing message. Repositories use it so storage details never leak.
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

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that satisfies errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// ValidationErrors accumulates validation messages across the sub-objects of a
// request so the caller gets a complete correction list in one round trip.
// The zero value is ready to use.
type ValidationErrors struct {
	Messages []string
}

// Add appends a formatted validation message.
func (v *ValidationErrors) Add(format string, args ...any) {
	v.Messages = append(v.Messages, fmt.Sprintf(format, args...))
}

// Append merges messages from another error. ValidationErrors are flattened;
// any other error contributes its Error() string.
func (v *ValidationErrors) Append(err error) {
	if err == nil {
		return
	}
	var other *ValidationErrors
	if errors.As(err, &other) {
		v.Messages = append(v.Messages, other.Messages...)
		return
	}
	v.Messages = append(v.Messages, err.Error())
}

// HasErrors reports whether any message has been accumulated.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Messages) > 0
}

// ErrOrNil returns the accumulated error, or nil when empty.
func (v *ValidationErrors) ErrOrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	return strings.Join(v.Messages, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match accumulated errors.
func (v *ValidationErrors) Unwrap() error {
	return ErrValidation
}
