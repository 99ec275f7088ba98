package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so handlers can pick the right HTTP status and
// message without inspecting upstream payloads.
type Kind int

const (
	// InvalidInput covers malformed or missing client fields. Resolved
	// locally, never forwarded upstream.
	InvalidInput Kind = iota
	// SignatureInvalid is terminal: a payment assertion whose signature does
	// not check out. Never retried.
	SignatureInvalid
	// UpstreamUnavailable means the gateway or the license authority could
	// not be reached at all (network error, timeout).
	UpstreamUnavailable
	// UpstreamRejected means the upstream was reachable but returned a
	// business error.
	UpstreamRejected
	// NotConfigured means a required server-side credential is absent.
	NotConfigured
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case SignatureInvalid:
		return "signature_invalid"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case UpstreamRejected:
		return "upstream_rejected"
	case NotConfigured:
		return "not_configured"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string // safe to show to the client
	Err     error  // underlying cause, server-side only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, walking wrapped errors. The boolean is
// false for unclassified errors.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// MessageOf returns the client-safe message for err, or a generic fallback.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
