// Package errors provides centralized error definitions and error handling
// utilities for the medley codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and
// convenience re-exports of the standard library helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - LibraryError: errors related to library membership and lookup
//   - StoreError: errors related to persistence (load, save, quarantine)
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//
// # Usage
//
// Creating errors:
//
//	// Semantic error
//	err := errors.NewNotFoundError("item", "/music/a.flac")
//
//	// Domain-specific error with context
//	err := errors.NewStoreError("save failed", baseErr).WithPath("/tmp/lib.db")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrItemNotFound) { ... }
//
//	var storeErr *errors.StoreError
//	if errors.As(err, &storeErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Library-related sentinel errors
var (
	// ErrItemNotFound indicates that a key is not present in a library.
	ErrItemNotFound = New("item not found")
	// ErrLibraryNotFound indicates that no library is registered under a name.
	ErrLibraryNotFound = New("library not found")
	// ErrAlreadyRegistered indicates that a library name is already taken
	// with the librarian.
	ErrAlreadyRegistered = New("library already registered")
)

// Persistence-related sentinel errors
var (
	// ErrCorruptData indicates that persisted data failed to decode.
	// Codec implementations must wrap this for structural failures so the
	// store can distinguish corruption (quarantine) from plain I/O errors.
	ErrCorruptData = New("corrupt library data")
)

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// LibraryError represents errors related to library membership and lookup.
//
// Example:
//
//	err := errors.NewLibraryError("lookup failed", errors.ErrItemNotFound)
//	err = err.WithLibrary("songs")
//	fmt.Println(err) // "library error [library=songs]: lookup failed: item not found"
type LibraryError struct {
	message string
	cause   error
	Library string
}

// NewLibraryError creates a new LibraryError.
func NewLibraryError(message string, cause error) *LibraryError {
	return &LibraryError{message: message, cause: cause}
}

// WithLibrary adds a library name to the error context.
func (e *LibraryError) WithLibrary(name string) *LibraryError {
	e.Library = name
	return e
}

// Error returns the formatted error message.
func (e *LibraryError) Error() string {
	prefix := "library error"
	if e.Library != "" {
		prefix = fmt.Sprintf("library error [library=%s]", e.Library)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Unwrap returns the underlying error.
func (e *LibraryError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *LibraryError) Is(target error) bool {
	if _, ok := target.(*LibraryError); ok {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// StoreError represents errors related to persistence.
//
// Example:
//
//	err := errors.NewStoreError("encode failed", baseErr)
//	err = err.WithPath("/home/u/.local/share/medley/lib.db")
type StoreError struct {
	message string
	cause   error
	Path    string
}

// NewStoreError creates a new StoreError.
func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{message: message, cause: cause}
}

// WithPath adds a file path to the error context.
func (e *StoreError) WithPath(path string) *StoreError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}

	prefix := "store error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("store error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *StoreError) Is(target error) bool {
	if _, ok := target.(*StoreError); ok {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("item", "/music/a.flac")
//	fmt.Println(err) // "item '/music/a.flac' not found"
type NotFoundError struct {
	ResourceType string
	ResourceID   string
	cause        error
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Unwrap returns the underlying error.
func (e *NotFoundError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	// NotFoundError for an item matches the item sentinel so callers can
	// check either form.
	if e.ResourceType == "item" && errors.Is(target, ErrItemNotFound) {
		return true
	}
	if e.ResourceType == "library" && errors.Is(target, ErrLibraryNotFound) {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to restore library")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to restore library %s", name)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
