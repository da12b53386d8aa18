// Package common defines the sentinel errors shared by the service and HTTP
// layers. Every specific error belongs to one kind (validation, unauthenticated,
// not found, conflict, too large, storage); callers match either with errors.Is.
package common

import "errors"

// Error kinds. The HTTP layer maps each kind to one status code.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooLarge        = errors.New("payload too large")
	ErrStorage         = errors.New("storage failure")
)

// kindError is a specific error that also matches its kind through errors.Is.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with the given message that belongs to kind.
func New(msg string, kind error) error {
	return &kindError{msg: msg, kind: kind}
}

var (
	// Auth.
	ErrDuplicateEmail        = New("email already registered", ErrConflict)
	ErrInvalidCredentials    = New("invalid email or password", ErrUnauthenticated)
	ErrTokenMissing          = New("authentication required", ErrUnauthenticated)
	ErrTokenMalformed        = New("malformed token", ErrUnauthenticated)
	ErrTokenInvalidSignature = New("invalid token signature", ErrUnauthenticated)
	ErrTokenExpired          = New("token expired", ErrUnauthenticated)
	ErrTokenInvalid          = New("invalid token", ErrUnauthenticated)
	ErrUserGone              = New("user no longer exists", ErrUnauthenticated)

	// Posts and comments.
	ErrPostNotFound = New("post not found", ErrNotFound)
	ErrUserNotFound = New("user not found", ErrNotFound)
	ErrEmptyPost    = New("post must contain text or media", ErrValidation)
	ErrMissingText  = New("missing text", ErrValidation)
	ErrInvalidPage  = New("page must be a positive integer", ErrValidation)
	ErrInvalidLimit = New("limit must be between 1 and 50", ErrValidation)
	ErrEmptyQuery   = New("search query is required", ErrValidation)
	ErrInvalidID    = New("invalid id", ErrValidation)
	ErrInvalidRole  = New("role must be client, farmer or skilled", ErrValidation)
	ErrEmptyName    = New("first name must not be empty", ErrValidation)

	// Uploads.
	ErrUnsupportedType = New("unsupported file type", ErrValidation)
	ErrMissingFile     = New("file is required", ErrValidation)
	ErrFileTooLarge    = New("file too large", ErrTooLarge)
	ErrInvalidFileName = New("invalid file name", ErrValidation)
)
