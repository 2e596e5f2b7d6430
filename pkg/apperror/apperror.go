package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Kind classifies a failure into one of the categories the API reports.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindUpstream
	KindTooManyRequests
	KindPayloadTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationFailed"
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindConflict:
		return "Conflict"
	case KindUpstream:
		return "UpstreamFailure"
	case KindTooManyRequests:
		return "TooManyRequests"
	case KindPayloadTooLarge:
		return "PayloadTooLarge"
	default:
		return "Internal"
	}
}

// Status returns the stable HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error type understood by the error funnel.
// Fields holds per-field validation messages when Kind is KindValidation.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
	Origin  string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind: errors.Is(err, apperror.NotFound("")) is true
// for any not-found error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err, Origin: caller(3)}
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if i := strings.LastIndex(file, "/internal/"); i >= 0 {
		file = file[i+1:]
	} else if i := strings.LastIndex(file, "/pkg/"); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func Validation(msg string, fields map[string]string) *Error {
	e := newError(KindValidation, msg, nil)
	e.Fields = fields
	return e
}

func NotFound(msg string) *Error        { return newError(KindNotFound, msg, nil) }
func Unauthorized(msg string) *Error    { return newError(KindUnauthorized, msg, nil) }
func Forbidden(msg string) *Error       { return newError(KindForbidden, msg, nil) }
func Conflict(msg string) *Error        { return newError(KindConflict, msg, nil) }
func TooManyRequests(msg string) *Error { return newError(KindTooManyRequests, msg, nil) }
func PayloadTooLarge(msg string) *Error { return newError(KindPayloadTooLarge, msg, nil) }

// Upstream wraps a failure of an external provider (payments, storage, mail).
func Upstream(msg string, err error) *Error { return newError(KindUpstream, msg, err) }

func Internal(msg string, err error) *Error { return newError(KindInternal, msg, err) }

// KindOf reports the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns err as *Error, wrapping unknown errors as Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}
