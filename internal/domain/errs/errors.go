// Package errs defines the error kinds shared by the domain and application layers.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error independent of its message.
type Kind string

const (
	KindDomain       Kind = "domain"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
)

// Machine readable codes.
const (
	CodeDomain             = "DOMAIN_ERROR"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
)

// Error carries a kind, a machine readable code and optional context.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	Context map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) ErrorCode() string { return e.Code }

func (e *Error) ErrorDetails() any {
	if d := e.Details(); d != nil {
		return d
	}
	return nil
}

// Is matches another *Error of the same kind and code, so sentinel values
// such as ErrNotFound work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

// With returns a copy of e with the key/value added to its context.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

// Details returns data suitable for an API error payload.
func (e *Error) Details() map[string]any {
	if e.Field == "" && len(e.Context) == 0 {
		return nil
	}
	out := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		out[k] = v
	}
	if e.Field != "" {
		out["field"] = e.Field
	}
	return out
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrDomain       = &Error{Kind: KindDomain}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrConflict     = &Error{Kind: KindConflict}
)

func Domain(code, message string) *Error {
	if code == "" {
		code = CodeDomain
	}
	return &Error{Kind: KindDomain, Code: code, Message: message}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Field: field, Message: message}
}

func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Context: map[string]any{"resource": resource, "id": id},
	}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "unauthorized"
	}
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: message}
}

// Forbidden is for an authenticated caller acting outside their rights.
func Forbidden(message string) *Error {
	if message == "" {
		message = "forbidden"
	}
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

func Conflict(code, message string) *Error {
	if code == "" {
		code = CodeConflict
	}
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Wrap attaches cause to a new domain error.
func Wrap(cause error, code, message string) *Error {
	e := Domain(code, message)
	e.cause = cause
	return e
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err, or "" for errors outside this package.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
func IsForbidden(err error) bool    { return KindOf(err) == KindForbidden }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
