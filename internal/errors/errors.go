package errors

import (
	"errors"
	"fmt"
)

// Request-scoped error taxonomy for the gateway. None of these are
// process-fatal; handlers map them onto HTTP statuses.
var (
	// Authentication errors
	ErrUnauthenticated   = errors.New("missing or malformed credential")
	ErrInvalidCredential = errors.New("invalid credential")

	// OAuth2 errors
	ErrInvalidClient      = errors.New("invalid client")
	ErrInvalidRedirectURI = errors.New("invalid redirect URI")
	ErrCodeExchangeFailed = errors.New("code exchange failed")

	// SCIM resource errors
	ErrDuplicateResource = errors.New("duplicate resource")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrValidation        = errors.New("validation error")

	// Replication errors - logged, never surfaced to the mutating caller
	ErrReplicationFailure = errors.New("replication failure")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
