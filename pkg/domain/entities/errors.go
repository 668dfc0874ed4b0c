package entities

import (
	"errors"
	"fmt"
)

// Classification and extraction failures.
var (
	ErrNoEntryDocument       = errors.New("no entry document found among static files")
	ErrNoRecognizableProject = errors.New("upload does not look like a deployable project")
	ErrCorruptArchive        = errors.New("archive cannot be opened")
)

// PropagationTimeout is signalled when a distribution does not report ready
// within the polling budget. It is a warning, not a deployment failure: the
// distribution keeps becoming ready on its own afterwards.
var ErrPropagationTimeout = errors.New("distribution not ready within polling budget")

// ValidationError marks malformed request input. Never retried; surfaced to
// the caller as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type AuthErrorReason string

const (
	AuthReasonInvalidRole     AuthErrorReason = "InvalidRole"
	AuthReasonTrustDenied     AuthErrorReason = "TrustDenied"
	AuthReasonAccountMismatch AuthErrorReason = "AccountMismatch"
	AuthReasonNotConnected    AuthErrorReason = "NotConnected"
	AuthReasonExpired         AuthErrorReason = "Expired"
)

// AuthError marks a failed or missing role assumption. Hint carries a
// remediation suggestion for the user; never retried automatically.
type AuthError struct {
	Reason AuthErrorReason
	Msg    string
	Hint   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Msg)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProviderError wraps a failure from the storage, CDN or identity provider,
// tagged with the provisioning step that raised it.
type ProviderError struct {
	Step string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
