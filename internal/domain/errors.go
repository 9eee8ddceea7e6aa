package domain

import "errors"

// Error kinds shared by every layer. Wrap them with fmt.Errorf("%w: ...") and
// classify with errors.Is.
var (
	// ErrInvalidInput indicates missing or malformed arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized indicates a missing or invalid token, or failed credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a valid identity that may not touch the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)
