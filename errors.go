package membership

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeLoginNotFound identifies lookups that matched no active login
	TextCodeLoginNotFound = "LOGIN_NOT_FOUND"
	// TextCodeNotImplemented identifies operations outside the core scope
	TextCodeNotImplemented = "NOT_IMPLEMENTED"
	// TextCodeStorageFailure identifies backing-store failures
	TextCodeStorageFailure = "STORAGE_FAILURE"
	// TextCodeUnknownRole identifies role names outside the fixed set
	TextCodeUnknownRole = "UNKNOWN_ROLE"
)

// ErrLoginNotFound is returned when a username or email matches no active login
var ErrLoginNotFound = goerrors.New("login not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeLoginNotFound)

// ErrNotImplemented is returned by provider operations that are explicitly
// out of scope (paging, search, password retrieval/reset, role
// creation/deletion). They fail loudly rather than silently no-op.
var ErrNotImplemented = goerrors.New("operation is not implemented by this provider", goerrors.CategoryOperation).
	WithTextCode(TextCodeNotImplemented)

// ErrUnknownRole is returned when a role name is not part of the fixed set
var ErrUnknownRole = goerrors.New("role is not part of the fixed role set", goerrors.CategoryValidation).
	WithTextCode(TextCodeUnknownRole)

// IsUniqueViolation will check for store-level uniqueness constraint errors
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}

// IsUniqueViolationOn will check for a uniqueness violation involving the
// given column
func IsUniqueViolationOn(err error, column string) bool {
	if !IsUniqueViolation(err) {
		return false
	}
	return strings.Contains(err.Error(), column)
}

// WrapStorageError converts a backing-store failure into a structured error
// that callers can distinguish from validation and not-found outcomes
func WrapStorageError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(TextCodeStorageFailure)
}
