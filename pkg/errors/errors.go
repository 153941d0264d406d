package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError independently of its HTTP status.
type Kind string

const (
	KindAuthentication Kind = "AuthenticationError"
	KindAuthorization  Kind = "AuthorizationError"
	KindNotFound       Kind = "NotFoundError"
	KindRateLimit      Kind = "RateLimitError"
	KindCancelled      Kind = "CancelledError"
	KindInternal       Kind = "InternalError"
)

// Client-facing messages. Detail carries the precise reason and is never rendered.
const (
	MsgUnauthenticated = "authentication required"
	MsgNotAuthorized   = "not authorized"
	MsgNotApproved     = "account not yet approved"
	MsgInvalidRequest  = "invalid request"
	MsgInternal        = "internal server error"
	MsgRateLimited     = "rate limit exceeded"
	MsgCancelled       = "request cancelled"
)

// StatusClientClosedRequest is the non-standard status used when the client
// went away before the response was ready.
const StatusClientClosedRequest = 499

// AppError represents an application error
type AppError struct {
	Kind          Kind   `json:"kind"`
	HTTPStatus    int    `json:"httpStatus"`
	IsOperational bool   `json:"isOperational"`
	Message       string `json:"message"`
	Detail        string `json:"-"`
	Err           error  `json:"-"`
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = e.Detail
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

// Unauthenticated is a missing or invalid credential.
func Unauthenticated(detail string, err error) *AppError {
	return &AppError{
		Kind:          KindAuthentication,
		HTTPStatus:    http.StatusUnauthorized,
		IsOperational: true,
		Message:       MsgUnauthenticated,
		Detail:        detail,
		Err:           err,
	}
}

// Forbidden is an authenticated caller that is not permitted.
func Forbidden(detail string) *AppError {
	return &AppError{
		Kind:          KindAuthorization,
		HTTPStatus:    http.StatusForbidden,
		IsOperational: true,
		Message:       MsgNotAuthorized,
		Detail:        detail,
	}
}

// NotApproved is the only authorization failure whose message is user-facing.
func NotApproved(detail string) *AppError {
	return &AppError{
		Kind:          KindAuthorization,
		HTTPStatus:    http.StatusForbidden,
		IsOperational: true,
		Message:       MsgNotApproved,
		Detail:        detail,
	}
}

// Misconfigured reports a route whose resource identifier could not be resolved.
func Misconfigured(detail string, err error) *AppError {
	return &AppError{
		Kind:          KindAuthorization,
		HTTPStatus:    http.StatusBadRequest,
		IsOperational: true,
		Message:       MsgInvalidRequest,
		Detail:        detail,
		Err:           err,
	}
}

// EvaluationFailure is an authorization check that could not complete. It is
// not operational and should alert.
func EvaluationFailure(detail string, err error) *AppError {
	return &AppError{
		Kind:          KindAuthorization,
		HTTPStatus:    http.StatusInternalServerError,
		IsOperational: false,
		Message:       MsgInternal,
		Detail:        detail,
		Err:           err,
	}
}

// Cancelled is work abandoned because the client cancelled the request.
// Nobody is left to read the response, so it is operational.
func Cancelled(detail string, err error) *AppError {
	return &AppError{
		Kind:          KindCancelled,
		HTTPStatus:    StatusClientClosedRequest,
		IsOperational: true,
		Message:       MsgCancelled,
		Detail:        detail,
		Err:           err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Kind:          KindNotFound,
		HTTPStatus:    http.StatusNotFound,
		IsOperational: true,
		Message:       fmt.Sprintf("%s not found", resource),
		Err:           err,
	}
}

func RateLimited(detail string) *AppError {
	return &AppError{
		Kind:          KindRateLimit,
		HTTPStatus:    http.StatusTooManyRequests,
		IsOperational: true,
		Message:       MsgRateLimited,
		Detail:        detail,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Kind:          KindInternal,
		HTTPStatus:    http.StatusInternalServerError,
		IsOperational: false,
		Message:       MsgInternal,
		Err:           err,
	}
}

// FromError converts any error into an AppError, defaulting to Internal.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
