// Package pipelineerr is the engine's error taxonomy, ported from the
// original implementation's VermanSchemaError enum into a typed Go error
// with a numeric exit-code projection. Call sites wrap lower-level
// faults with fmt.Errorf("...: %w", err) and compare kinds with
// errors.As, the way the teacher prefers sentinel errors
// (pipeline.ErrNoSteps) over bare strings.
package pipelineerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the engine's failure categories. Numeric values match
// the conventional exit-code projection from spec §7.
type Kind uint16

const (
	KindNotFound          Kind = 404
	KindTask              Kind = 594
	KindTaskFailedToStart Kind = 597
	KindHTTPError         Kind = 598
	KindNotInstalled      Kind = 599
	KindStdIOError        Kind = 700
	KindExitCode          Kind = 710
	KindTomlDeError       Kind = 720
	KindSerdeJSONError    Kind = 721
	KindReqwestError      Kind = 732
	KindInvalidHeaderName Kind = 733
	KindInvalidHeaderValue Kind = 734
	KindInvalidMethod     Kind = 735
	KindInvalidURI        Kind = 736
	KindJSONExtensionsError Kind = 737
	KindSubstError        Kind = 738
	KindUtf8Error         Kind = 739
	KindJaqCoreError      Kind = 740
	KindJaqJSONError      Kind = 741
	KindJaqStrError       Kind = 742
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindTask:
		return "Task"
	case KindTaskFailedToStart:
		return "TaskFailedToStart"
	case KindHTTPError:
		return "HttpError"
	case KindNotInstalled:
		return "NotInstalled"
	case KindStdIOError:
		return "StdIoError"
	case KindExitCode:
		return "ExitCode"
	case KindTomlDeError:
		return "TomlDeError"
	case KindSerdeJSONError:
		return "SerdeJsonError"
	case KindReqwestError:
		return "ReqwestError"
	case KindInvalidHeaderName:
		return "InvalidHeaderName"
	case KindInvalidHeaderValue:
		return "InvalidHeaderValue"
	case KindInvalidMethod:
		return "InvalidMethod"
	case KindInvalidURI:
		return "InvalidUri"
	case KindJSONExtensionsError:
		return "SerdeJsonExtensionsError"
	case KindSubstError:
		return "SubstError"
	case KindUtf8Error:
		return "Utf8Error"
	case KindJaqCoreError:
		return "JaqCoreError"
	case KindJaqJSONError:
		return "JaqJsonError"
	case KindJaqStrError:
		return "JaqStrError"
	default:
		return "Unknown"
	}
}

// Error is the engine's typed error. Msg carries the human-readable
// detail (e.g. "input to provide", a status code, a key name); Wrapped
// carries a lower-level fault for the carrier kinds (I/O, JSON, HTTP
// transport, etc.).
type Error struct {
	Kind    Kind
	Msg     string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Wrapped)
	}
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// ExitCode projects the error onto a process exit code: the discriminant
// when it fits in a byte, else 1 (with the numeric code expected to be
// echoed to stderr separately by the caller).
func (e *Error) ExitCode() int {
	if e.Kind <= 255 {
		return int(e.Kind)
	}
	return 1
}

// New constructs an Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs a carrier Error of the given kind wrapping a
// lower-level fault.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Wrapped: err}
}

// NotFound builds a KindNotFound error, the most common sentinel in the
// interpolator and jq command ("input to provide", "Any content",
// "`Command`s").
func NotFound(msg string) *Error {
	return New(KindNotFound, msg)
}

// HTTPError builds a KindHTTPError error carrying the observed status
// code as the message.
func HTTPError(status int) *Error {
	return New(KindHTTPError, fmt.Sprintf("unexpected status code %d", status))
}

// As reports whether err (or one it wraps) is a *Error, and if so
// returns it. Thin convenience over errors.As to keep call sites short.
func As(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, and ok is
// false otherwise.
func KindOf(err error) (Kind, bool) {
	pe, ok := As(err)
	if !ok {
		return 0, false
	}
	return pe.Kind, true
}
