package veldt

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested model does not exist.
	ErrNotFound = errors.New("veldt: model not found")

	// ErrPoolNotFound is returned when a named connection pool has not
	// been registered.
	ErrPoolNotFound = errors.New("veldt: connection pool not found")

	// ErrUnknownDialect is returned when a configuration names a dialect
	// that has no encoder.
	ErrUnknownDialect = errors.New("veldt: unknown dialect")
)

// NotFoundError represents an error when a model is not found.
type NotFoundError struct {
	model string
	id    any // Optional: the primary key that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("veldt: %s not found (id=%v)", e.model, e.id)
	}
	return fmt.Sprintf("veldt: %s not found", e.model)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Model returns the model name.
func (e *NotFoundError) Model() string {
	return e.model
}

// ID returns the primary key that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given model.
func NewNotFoundError(model string) *NotFoundError {
	return &NotFoundError{model: model}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the primary key
// that was searched for.
func NewNotFoundErrorWithID(model string, id any) *NotFoundError {
	return &NotFoundError{model: model, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ArityError represents an error when a single-row operation affected a
// number of rows other than one. It carries the rendered SQL for diagnostics.
type ArityError struct {
	SQL      string
	Affected int64
}

// Error returns the error string.
func (e *ArityError) Error() string {
	return fmt.Sprintf("veldt: expected 1 affected row, got %d for query: %s", e.Affected, e.SQL)
}

// NewArityError returns a new ArityError.
func NewArityError(sql string, affected int64) *ArityError {
	return &ArityError{SQL: sql, Affected: affected}
}

// IsArityError returns true if the error is an ArityError.
func IsArityError(err error) bool {
	if err == nil {
		return false
	}
	var e *ArityError
	return errors.As(err, &e)
}

// DecodeError represents an error when a column value is incompatible with
// the requested target type.
type DecodeError struct {
	Field  string
	Source string // Textual form of the rejected value
	Err    error
}

// Error returns the error string.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("veldt: decoding field %q from %q: %v", e.Field, e.Source, e.Err)
	}
	return fmt.Sprintf("veldt: decoding field %q from %q", e.Field, e.Source)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError returns a new DecodeError.
func NewDecodeError(field, source string, err error) *DecodeError {
	return &DecodeError{Field: field, Source: source, Err: err}
}

// IsDecodeError returns true if the error is a DecodeError.
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	var e *DecodeError
	return errors.As(err, &e)
}

// ValidationError carries per-field messages for constraint checks that
// failed before any SQL was issued.
type ValidationError struct {
	Fields map[string]string
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "veldt: validation failed"
	}
	var sb strings.Builder
	sb.WriteString("veldt: validation failed:")
	for field, msg := range e.Fields {
		fmt.Fprintf(&sb, " %s(%s)", field, msg)
	}
	return sb.String()
}

// NewValidationError returns a new ValidationError with a single field message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Record adds a field message to the error.
func (e *ValidationError) Record(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// TemplateError represents a fatal template failure, such as a binding
// placeholder used where no parameters were supplied.
type TemplateError struct {
	Name string // Parameter name referenced by the template
	Err  error
}

// Error returns the error string.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("veldt: template parameter %q: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *TemplateError) Unwrap() error {
	return e.Err
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("veldt: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}
