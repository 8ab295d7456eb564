// Package errs provides the error type returned across ironshelf.
//
// The store client, the projector and the dispatcher wrap native errors into
// *errs.Error so that the web handlers and the CLI can branch on a Kind
// instead of parsing messages.
//
//	if errs.IsNotFound(err) {
//	    return echo.NewHTTPError(http.StatusNotFound, err.Error())
//	}
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises an error without exposing SDK-specific types.
type Kind int

const (
	KindUnknown          Kind = iota
	KindNotFound              // no such bucket, key or policy
	KindConnectionFailed      // endpoint unreachable or client cannot be built
	KindPermissionDenied      // bad credentials, access denied
	KindConflict              // bucket exists, bucket not empty
	KindInvalidInput          // rejected arguments
	KindTimeout               // context deadline or cancellation
	KindPartialFailure        // some items of a bulk operation failed
	KindLocalIO               // local file system errors
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConnectionFailed:
		return "connection_failed"
	case KindPermissionDenied:
		return "permission_denied"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindTimeout:
		return "timeout"
	case KindPartialFailure:
		return "partial_failure"
	case KindLocalIO:
		return "local_io"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by ironshelf packages.
type Error struct {
	Kind    Kind
	Message string
	// Code is the store's own error code (e.g. "NoSuchBucketPolicy"), if any.
	Code  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error around cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// WithCode returns a copy of e carrying the store error code.
func (e *Error) WithCode(code string) *Error {
	c := *e
	c.Code = code
	return &c
}

func IsNotFound(err error) bool         { return KindOf(err) == KindNotFound }
func IsConnectionFailed(err error) bool { return KindOf(err) == KindConnectionFailed }
func IsPermissionDenied(err error) bool { return KindOf(err) == KindPermissionDenied }
func IsConflict(err error) bool         { return KindOf(err) == KindConflict }
func IsInvalidInput(err error) bool     { return KindOf(err) == KindInvalidInput }
func IsTimeout(err error) bool          { return KindOf(err) == KindTimeout }
func IsPartialFailure(err error) bool   { return KindOf(err) == KindPartialFailure }
func IsLocalIO(err error) bool          { return KindOf(err) == KindLocalIO }

// KindOf extracts the outermost Kind found in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the first non-empty store code found in the chain.
func CodeOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Code != "" {
			return e.Code
		}
		err = e.Cause
	}
	return ""
}
