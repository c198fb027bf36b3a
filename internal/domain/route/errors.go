package route

import (
	"errors"
	"net/http"
)

// ErrorKind is the closed set of routing failures shown to the user.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindZeroResults      ErrorKind = "zero_results"
	KindTooManyWaypoints ErrorKind = "too_many_waypoints"
	KindRouteTooLong     ErrorKind = "route_too_long"
	KindInvalidRequest   ErrorKind = "invalid_request"
	KindQuotaExceeded    ErrorKind = "quota_exceeded"
	KindAuthDenied       ErrorKind = "auth_denied"
	KindUnknown          ErrorKind = "unknown"
)

var kindMessages = map[ErrorKind]string{
	KindNotFound:         "One or more locations could not be found",
	KindZeroResults:      "No route found between the specified locations",
	KindTooManyWaypoints: "Too many waypoints (maximum is 23)",
	KindRouteTooLong:     "Route is too long to calculate",
	KindInvalidRequest:   "Invalid request parameters",
	KindQuotaExceeded:    "API quota exceeded. Please try again later",
	KindAuthDenied:       "Request denied. Please check your API key",
	KindUnknown:          "An unknown error occurred",
}

var kindStatus = map[ErrorKind]int{
	KindNotFound:         http.StatusUnprocessableEntity,
	KindZeroResults:      http.StatusUnprocessableEntity,
	KindTooManyWaypoints: http.StatusBadRequest,
	KindRouteTooLong:     http.StatusBadRequest,
	KindInvalidRequest:   http.StatusBadRequest,
	KindQuotaExceeded:    http.StatusTooManyRequests,
	KindAuthDenied:       http.StatusBadGateway,
	KindUnknown:          http.StatusBadGateway,
}

// Message returns the fixed human-readable message for the kind.
func (k ErrorKind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[KindUnknown]
}

// Sentinels usable with errors.Is.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrZeroResults      = &Error{Kind: KindZeroResults}
	ErrTooManyWaypoints = &Error{Kind: KindTooManyWaypoints}
	ErrRouteTooLong     = &Error{Kind: KindRouteTooLong}
	ErrInvalidRequest   = &Error{Kind: KindInvalidRequest}
	ErrQuotaExceeded    = &Error{Kind: KindQuotaExceeded}
	ErrAuthDenied       = &Error{Kind: KindAuthDenied}
	ErrUnknown          = &Error{Kind: KindUnknown}
)

// Error is a routing failure. Its message is always the fixed message of its kind;
// the backend-specific cause is kept for logs only.
type Error struct {
	Kind  ErrorKind
	Cause error
}

// NewError creates a routing error of the given kind.
func NewError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string { return e.Kind.Message() }

// Unwrap exposes the backend cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// StatusCode maps the kind to the HTTP status returned to the front-end.
func (e *Error) StatusCode() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return http.StatusBadGateway
}

// Code is the machine-readable kind.
func (e *Error) Code() string { return string(e.Kind) }

// KindOf extracts the routing error kind from err.
func KindOf(err error) (ErrorKind, bool) {
	var routeErr *Error
	if errors.As(err, &routeErr) {
		return routeErr.Kind, true
	}
	return "", false
}
