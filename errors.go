package gitnotes

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a write's revision precondition does not
	// match the remote's current revision, or when a branch reference cannot
	// be advanced because another writer moved it first. Conflicts are never
	// collapsed into generic failures: callers decide whether to surface a
	// refresh/reapply flow based on errors.Is(err, ErrConflict).
	ErrConflict = errors.New("revision precondition mismatch")

	// ErrNotFound is returned when a remote path or object does not exist.
	// Directory listings never return it; a missing directory lists as empty.
	ErrNotFound = errors.New("path not found")

	// ErrInvalidPath is returned when a repository path is malformed,
	// for example when it contains parent directory references.
	ErrInvalidPath = errors.New("invalid path")

	// ErrValidation is returned when an operation is rejected before any
	// remote call is made: empty commit message, empty staged set, deleting
	// a non-empty directory, or an invalid target path.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated is returned when a mutating operation is attempted
	// without a current user identity.
	ErrUnauthenticated = errors.New("not authenticated")
)

// ConflictError provides structured information about a revision conflict.
// It implements the error interface and supports errors.Is/As for the
// underlying ErrConflict.
type ConflictError struct {
	Path     string
	Expected string
	Err      error
}

func (e *ConflictError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("conflict at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("conflict at %s (expected revision %s): %v", e.Path, e.Expected, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NewConflictError creates a new ConflictError for the given path and
// expected prior revision. An empty expected revision denotes a conflict
// detected without a per-file precondition, such as a rejected branch advance.
func NewConflictError(path, expected string) *ConflictError {
	return &ConflictError{
		Path:     path,
		Expected: expected,
		Err:      ErrConflict,
	}
}

// PathNotFoundError provides structured information about a missing remote path.
// It implements the error interface and supports errors.Is/As for the
// underlying ErrNotFound.
type PathNotFoundError struct {
	Path string
	Err  error
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path %q not found: %v", e.Path, e.Err)
}

func (e *PathNotFoundError) Unwrap() error {
	return e.Err
}

// NewPathNotFoundError creates a new PathNotFoundError for the given path.
func NewPathNotFoundError(path string) *PathNotFoundError {
	return &PathNotFoundError{
		Path: path,
		Err:  ErrNotFound,
	}
}

// InvalidPathError provides structured information about a malformed path.
// It implements the error interface and supports errors.Is/As for the
// underlying ErrInvalidPath.
type InvalidPathError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

func (e *InvalidPathError) Unwrap() error {
	return e.Err
}

// NewInvalidPathError creates a new InvalidPathError with the given reason.
func NewInvalidPathError(path, reason string) *InvalidPathError {
	return &InvalidPathError{
		Path:   path,
		Reason: reason,
		Err:    ErrInvalidPath,
	}
}

// ValidationError describes an operation rejected before any remote call.
// It implements the error interface and supports errors.Is/As for the
// underlying ErrValidation.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{
		Reason: reason,
		Err:    ErrValidation,
	}
}

// isConflict reports whether an error is conflict-class.
func isConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// isValidation reports whether an error is validation-class.
func isValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidPath)
}
