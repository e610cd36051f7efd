package model

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindSessionLoad        Kind = "session load"
	KindNoLaps             Kind = "no laps"
	KindEmptyTelemetry     Kind = "empty telemetry"
	KindTelemetryLoad      Kind = "telemetry load"
	KindChannelUnavailable Kind = "channel unavailable"
	KindInvalidChannel     Kind = "invalid channel"
	KindInvalidSlot        Kind = "invalid slot"
)

var (
	ErrSessionLoad        = &Error{Kind: KindSessionLoad}
	ErrNoLaps             = &Error{Kind: KindNoLaps}
	ErrEmptyTelemetry     = &Error{Kind: KindEmptyTelemetry}
	ErrTelemetryLoad      = &Error{Kind: KindTelemetryLoad}
	ErrChannelUnavailable = &Error{Kind: KindChannelUnavailable}
	ErrInvalidChannel     = &Error{Kind: KindInvalidChannel}
	ErrInvalidSlot        = &Error{Kind: KindInvalidSlot}
)

// Error is a failure of the comparison pipeline. Two errors match with errors.Is
// when they have the same Kind.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func NewError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
