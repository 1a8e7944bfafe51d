// Package domainerr provides the structured error type shared by every domain module.
package domainerr

import (
	"fmt"
	"net/http"
)

// Error is a structured, self-describing domain error.
// It carries HTTP/RFC7807-friendly metadata so a shared formatter can convert any domain
// error into a Problem response without enumerating error types.
type Error struct {
	// Code is a stable, machine-readable business code (e.g., "ErrInvalidOrExpiredOtp").
	Code string

	// HTTPStatus is the HTTP status suggested for this error (e.g., 400, 401, 404, 409, 500).
	HTTPStatus int

	// Title is a short human summary; if empty the formatter will default to StatusText(HTTPStatus).
	Title string

	// Message is a human-readable message. When Detail is empty, this is used as the public detail.
	Message string

	// Detail is a user-friendly, safe explanation for clients. If empty, Message is used.
	Detail string

	// TypeURI is an RFC7807 type URI, e.g. "urn:problem:user/err-not-found".
	TypeURI string

	// Context is an optional extension payload for clients.
	Context any

	cause error
}

// Error satisfies the standard Go error interface.
// It includes the underlying cause's error message if it exists.
func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is compares by Code rather than pointer identity, so copies created via WithCause
// still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error wrapping the provided cause.
func (e *Error) WithCause(err error) *Error {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

// WithDetail returns a copy with a public-friendly detail message.
func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithContext returns a copy carrying an extension payload for clients.
func (e *Error) WithContext(ctx any) *Error {
	cp := *e
	cp.Context = ctx
	return &cp
}

// --- RFC7807 mapping accessors (satisfy httpx.DomainProblem) ---

func (e *Error) ProblemCode() string { return e.Code }

func (e *Error) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

func (e *Error) ProblemTitle() string { return e.Title }

func (e *Error) ProblemDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

func (e *Error) ProblemTypeURI() string { return e.TypeURI }
func (e *Error) ProblemContext() any    { return e.Context }

// New builds an error whose title is derived from the status.
func New(code string, status int, message, typeURI string) *Error {
	return &Error{
		Code:       code,
		HTTPStatus: status,
		Title:      http.StatusText(status),
		Message:    message,
		TypeURI:    typeURI,
	}
}

// Shared sentinels for upstream collaborators (mail queue, image host, identity provider).
var (
	ErrProviderError = New("ErrProviderError", http.StatusBadGateway,
		"an upstream provider failed", "urn:problem:err-provider-error")

	ErrProviderUnavailable = New("ErrProviderUnavailable", http.StatusServiceUnavailable,
		"an upstream provider is temporarily unavailable, try again later", "urn:problem:err-provider-unavailable")

	ErrInternal = New("ErrInternal", http.StatusInternalServerError,
		"internal server error", "urn:problem:err-internal")
)
