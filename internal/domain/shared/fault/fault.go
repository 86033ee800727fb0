// Package fault classifies domain errors into the kinds the transport layer
// knows how to report.
package fault

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream failure")
)

// Error is a domain error tagged with a kind and a machine-readable reason.
type Error struct {
	Kind   error
	Reason string
	Msg    string
}

// New builds a kinded error. Compare results with errors.Is against either the
// returned value or its kind.
func New(kind error, reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// Reason returns the machine-readable reason carried by err, or fallback.
func Reason(err error, fallback string) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Reason != "" {
		return fe.Reason
	}
	return fallback
}

// KindOf reports which kind err belongs to, nil when unclassified.
func KindOf(err error) error {
	for _, kind := range []error{ErrInvalidInput, ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrUpstream} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
