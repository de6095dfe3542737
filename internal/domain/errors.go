package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services, repositories and delivery.
// ErrConflict is returned by a RegistrationStore when the uniqueness constraint rejects an insert;
// services surface it as ErrAlreadyRegistered.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrConflict          = errors.New("registration conflict")
	ErrInvalidSchedule   = errors.New("invalid event schedule")
	ErrProviderError     = errors.New("calendar provider error")
	ErrMissingCredential = errors.New("missing calendar credential")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// Stable error codes surfaced to API clients.
const (
	CodeAlreadyRegistered = "already_registered"
	CodeNotFound          = "not_found"
	CodeInvalidInput      = "invalid_input"
	CodeServerError       = "server_error"
	CodeInvalidSchedule   = "invalid_schedule"
	CodeProviderError     = "provider_error"
	CodeMissingCredential = "missing_credential"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
)

// ProviderError wraps a failure returned by the external calendar provider.
// StatusCode is the HTTP status reported by the provider, 0 for transport failures.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("calendar provider %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("calendar provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProviderError) hold for every ProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrProviderError }

// ErrorCode maps err to its stable API code. Unknown errors map to CodeServerError.
// ErrConflict is reported as CodeAlreadyRegistered.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyRegistered), errors.Is(err, ErrConflict):
		return CodeAlreadyRegistered
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrInvalidSchedule):
		return CodeInvalidSchedule
	case errors.Is(err, ErrMissingCredential):
		return CodeMissingCredential
	case errors.Is(err, ErrProviderError):
		return CodeProviderError
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	default:
		return CodeServerError
	}
}
