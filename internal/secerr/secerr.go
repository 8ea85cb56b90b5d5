// Package secerr defines the error taxonomy shared by the security
// pipeline. Every internally raised error carries a machine-readable
// kind and code; the text shown to an end user is always drawn from a
// fixed catalogue, never from the underlying error.
package secerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline error by the policy it violated.
type Kind string

const (
	// PolicyDenied covers rate limits and brute-force lockouts. Surfaced
	// to the caller as a generic message that never reveals which check
	// failed.
	PolicyDenied Kind = "policy_denied"

	// ValidationRejected covers malformed input, detected prompt
	// injection, and unparsable URLs.
	ValidationRejected Kind = "validation_rejected"

	// SecurityBlocked covers SSRF targets, banned protocols, leak
	// detection, and bulk disclosure. The real reason stays internal.
	SecurityBlocked Kind = "security_blocked"

	// InfrastructureFailure covers store and network errors. Whether a
	// check fails open or closed on this kind is decided at the call
	// site, not here.
	InfrastructureFailure Kind = "infrastructure_failure"
)

// Error is a kinded pipeline error. Two Errors match under errors.Is
// when their codes are equal, so package-level sentinel values double
// as match targets.
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a kinded error with no cause.
func New(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Wrap creates a kinded error around an internal cause.
func Wrap(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// KindOf extracts the kind from an error chain. Unknown errors are
// treated as infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InfrastructureFailure
}

// clientMessages is the full set of texts that may reach an end user.
// Stack traces, storage paths, and pattern internals never appear here.
var clientMessages = map[Kind]string{
	PolicyDenied:          "Too many requests. Please try again later.",
	ValidationRejected:    "Your message could not be processed. Please rephrase and try again.",
	SecurityBlocked:       "This request cannot be completed.",
	InfrastructureFailure: "Something went wrong. Please try again.",
}

// ClientMessage returns the catalogue text for an error. Safe to call
// with any error, including nil chains from external collaborators.
func ClientMessage(err error) string {
	return clientMessages[KindOf(err)]
}
