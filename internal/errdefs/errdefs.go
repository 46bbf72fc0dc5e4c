// Package errdefs defines typed errors with machine-readable kinds for the
// command surface. Every failure a controller can observe carries one of the
// kinds below; the dispatcher renders them into response envelopes as
// "kind: message" strings.
package errdefs

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// InvalidPayload indicates a command payload missing or mistyping a field.
	InvalidPayload Kind = "invalid_payload"
	// TargetNotFound indicates the named window or element does not exist.
	TargetNotFound Kind = "target_not_found"
	// CaptureFailed indicates every screenshot strategy, placeholder included, failed.
	CaptureFailed Kind = "capture_failed"
	// Timeout indicates a correlation deadline elapsed with no response.
	Timeout Kind = "timeout"
	// MalformedResponse indicates the remote side answered with an unexpected shape.
	MalformedResponse Kind = "malformed_response"
	// BindFailed indicates the command socket could not be created.
	BindFailed Kind = "bind_failed"
	// HostUnavailable indicates no host application is attached to the bridge.
	HostUnavailable Kind = "host_unavailable"
	// HostOperationFailed wraps a failure reported by the host capability provider.
	HostOperationFailed Kind = "host_operation_failed"
	// CorrelationBusy indicates a correlation key already has a request in flight.
	CorrelationBusy Kind = "correlation_busy"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, msg string) *E { return &E{Kind: kind, Message: msg} }

// Newf returns an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and message to an underlying error.
func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }

// KindOf returns the kind carried by err, or the empty kind when err has none.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
