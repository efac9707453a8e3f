package services

import (
	"errors"
	"fmt"
)

var (
	ErrPromptMissing      = errors.New("prompt required")
	ErrDuplicateIdentity  = errors.New("email or username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type PromptTooLongError struct{ Max int }

func (e *PromptTooLongError) Error() string {
	return fmt.Sprintf("prompt too long (max %d)", e.Max)
}

// RemoteUnreachableError wraps a transport failure talking to the
// generation API: timeout, refused connection, DNS.
type RemoteUnreachableError struct{ Err error }

func (e *RemoteUnreachableError) Error() string {
	return "remote API unreachable: " + e.Err.Error()
}

func (e *RemoteUnreachableError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx answer from the generation API. Details holds the
// decoded JSON error body, or the raw text when it is not JSON.
type RemoteError struct {
	Status  int
	Details interface{}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote API returned status %d", e.Status)
}

type InvalidUpstreamJSONError struct{ Err error }

func (e *InvalidUpstreamJSONError) Error() string {
	return "invalid JSON from remote API: " + e.Err.Error()
}

func (e *InvalidUpstreamJSONError) Unwrap() error { return e.Err }

// ValidationError carries a user-facing message for a rejected form.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }
