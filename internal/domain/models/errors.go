package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrPasswordMismatch indicates the password confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrSignupCapReached indicates no further accounts may be created.
	ErrSignupCapReached = errors.New("sign-up limit reached")
	// ErrInvalidCredentials indicates the identity provider rejected a sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSignupRejected indicates the identity provider rejected a sign-up.
	ErrSignupRejected = errors.New("sign-up rejected")
	// ErrUnauthenticated indicates the caller has no active session.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyCheckedOut indicates the live entry was checked out before.
	ErrAlreadyCheckedOut = errors.New("entry already checked out")
	// ErrStoreUnavailable wraps any failed document store call.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// AuthError carries the identity provider message verbatim.
type AuthError struct {
	Op      string
	Message string
	Kind    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Kind }

// StoreError wraps err as ErrStoreUnavailable unless it already is a domain
// outcome (ErrNotFound, ErrAlreadyCheckedOut).
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyCheckedOut) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
