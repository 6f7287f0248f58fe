package docdex

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be generic and map well to transport-level concerns
// (HTTP status codes, retry eligibility) without being tied to any transport.
const (
	ECONFLICT    = "conflict"    // action cannot be performed
	EINVALID     = "invalid"     // validation failed
	ENOTFOUND    = "not_found"   // entity does not exist
	ERATELIMIT   = "rate_limit"  // remote service is throttling us
	EUNAVAILABLE = "unavailable" // remote service cannot be reached
	EINTERNAL    = "internal"    // internal error
)

// Error represents an application-specific error. Errors carry a
// machine-readable code, a human-readable message, and, for errors that
// originate from a remote HTTP response, the response status.
type Error struct {
	// Code is a machine-readable error code.
	Code string

	// Message is a human-readable message.
	Message string

	// HTTPStatus is the remote response status, when the error originated
	// from an HTTP response. Zero when not applicable.
	HTTPStatus int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("docdex error: code=%s status=%d message=%s", e.Code, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("docdex error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorStatus unwraps an application error and returns the HTTP status the
// error originated from, or zero for errors without one. Retry and rate-limit
// classification dispatches on this value instead of probing error strings.
func ErrorStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return 0
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// StatusErrorf returns an Error carrying a remote HTTP status. The code is
// derived from the status: 404 maps to ENOTFOUND, 429 to ERATELIMIT, other
// 4xx to EINVALID, and everything else to EUNAVAILABLE.
func StatusErrorf(status int, format string, args ...any) *Error {
	code := EUNAVAILABLE
	switch {
	case status == 404:
		code = ENOTFOUND
	case status == 429:
		code = ERATELIMIT
	case status >= 400 && status < 500:
		code = EINVALID
	}
	return &Error{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: status,
	}
}
