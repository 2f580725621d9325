// Package errors is the platform error type: a wire code, a caller safe
// message, an optional field and the cause. Import it as perr.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error; values are on the wire, append only
type ErrorCode uint16

// Error codes
const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeTooManyRequests
	ErrorCodeConflict
	ErrorCodeUnauthorized
	ErrorCodeForbidden
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
	ErrorCodeNative // raised by the proving engine or its backends
	ErrorCodeNotImplemented
)

// codes is indexed by ErrorCode
var codes = [...]struct {
	name   string
	status int
}{
	{"unknown", http.StatusInternalServerError},
	{"panic", http.StatusInternalServerError},
	{"unavailable", http.StatusServiceUnavailable},
	{"too_many_requests", http.StatusTooManyRequests},
	{"conflict", http.StatusConflict},
	{"unauthorized", http.StatusUnauthorized},
	{"forbidden", http.StatusForbidden},
	{"invalid_argument", http.StatusUnprocessableEntity},
	{"validation", http.StatusBadRequest},
	{"json", http.StatusBadRequest},
	{"not_found", http.StatusNotFound},
	{"duplicate_key", http.StatusConflict},
	{"db", http.StatusInternalServerError},
	{"native", http.StatusInternalServerError},
	{"not_implemented", http.StatusNotImplemented},
}

func (c ErrorCode) known() bool { return int(c) < len(codes) }

func (c ErrorCode) String() string {
	if c.known() {
		return codes[c].name
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// Status is the http status for c; unknown codes map to 500
func (c ErrorCode) Status() int {
	if c.known() {
		return codes[c].status
	}
	return http.StatusInternalServerError
}

// Error is the platform error. Only msg and field ever reach a caller; the
// cause stays in logs.
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause == nil:
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the wire code
func (e *Error) Code() ErrorCode { return e.code }

// Field names the offending argument, if any
func (e *Error) Field() string { return e.field }

// Op is the operation that raised the error, if recorded
func (e *Error) Op() string { return e.op }

// Wire is the JSON form of an error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// WireFrom renders err for a caller; foreign errors become Unknown with their text
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	e, ok := As(err)
	if !ok {
		return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
	}
	return Wire{Code: e.code, Message: e.msg, Field: e.field}
}

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is the code of err, Unknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether CodeOf(err) is code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus is the http status for any error
func HTTPStatus(err error) int { return CodeOf(err).Status() }

// with copies the outermost *Error, applies fn and returns the copy;
// foreign errors come back unchanged
func with(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	cp := *e
	fn(&cp)
	return &cp
}

// WithField names the argument err is about
func WithField(err error, field string) error {
	return with(err, func(e *Error) { e.field = field })
}

// WithOp records the operation that raised err
func WithOp(err error, op string) error {
	return with(err, func(e *Error) { e.op = op })
}

// Newf builds an error with code
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches code and msg to cause
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

// Wrapf is Wrap with a format
func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return Wrap(cause, code, fmt.Sprintf(format, a...))
}

// Shorthands for Newf with a fixed code

func NotFoundf(format string, a ...any) error      { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error    { return Newf(ErrorCodeInvalidArgument, format, a...) }
func JSONErrf(format string, a ...any) error       { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error      { return Newf(ErrorCodePanic, format, a...) }
func Unauthorizedf(format string, a ...any) error  { return Newf(ErrorCodeUnauthorized, format, a...) }
func Forbiddenf(format string, a ...any) error     { return Newf(ErrorCodeForbidden, format, a...) }
func Unavailablef(format string, a ...any) error   { return Newf(ErrorCodeUnavailable, format, a...) }
func Nativef(format string, a ...any) error        { return Newf(ErrorCodeNative, format, a...) }
func NotImplementedf(format string, a ...any) error { return Newf(ErrorCodeNotImplemented, format, a...) }
func Internalf(format string, a ...any) error      { return Newf(ErrorCodeUnknown, format, a...) }
