package errors

import (
	"errors"
	"fmt"
)

// Common error types for the gateway
var (
	// Credential errors
	ErrNoCredential       = errors.New("no credential")
	ErrCredentialInvalid  = errors.New("credential invalid")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Identity service errors
	ErrServiceUnreachable = errors.New("identity service unreachable")
	ErrMalformedResponse  = errors.New("malformed identity response")

	// Authorization errors
	ErrRoleMismatch = errors.New("role mismatch")
	ErrUnknownRole  = errors.New("unknown role")

	// Store errors
	ErrInvalidClientID = errors.New("invalid client id")

	// General errors
	ErrNotFound = errors.New("not found")
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

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
