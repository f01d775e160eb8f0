// Package result provides a success/failure value used by use cases instead of
// bare (value, error) pairs so callers can pass outcomes around as one value.
package result

import (
	"encoding/json"
	"errors"
)

// Result holds either data or an error, never both.
type Result[T any] struct {
	data T
	err  error
}

// Ok wraps a successful value.
func Ok[T any](data T) Result[T] {
	return Result[T]{data: data}
}

// Fail wraps an error. A nil error is replaced so the result is still a failure.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result[T]{err: err}
}

// From builds a Result from a conventional (value, error) pair.
func From[T any](data T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(data)
}

func (r Result[T]) IsSuccess() bool { return r.err == nil }
func (r Result[T]) IsFailure() bool { return r.err != nil }

// Data returns the value; it is the zero value on failure.
func (r Result[T]) Data() T { return r.data }

func (r Result[T]) Err() error { return r.err }

func (r Result[T]) Unwrap() (T, error) { return r.data, r.err }

// OrElse returns the value on success and fallback otherwise.
func (r Result[T]) OrElse(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.data
}

// Map transforms the value of a successful result.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Fail[U](r.err)
	}
	return Ok(fn(r.data))
}

// FlatMap chains an operation that may itself fail.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Fail[U](r.err)
	}
	return fn(r.data)
}

// ErrorBody is the wire form of a failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Coder is implemented by errors that expose a machine readable code.
type Coder interface {
	error
	ErrorCode() string
}

// Detailer is implemented by errors that carry extra payload for clients.
type Detailer interface {
	ErrorDetails() any
}

// BodyOf converts an error into its wire form.
func BodyOf(err error) ErrorBody {
	if err == nil {
		return ErrorBody{}
	}
	body := ErrorBody{Code: "UNKNOWN_ERROR", Message: err.Error()}
	var c Coder
	if errors.As(err, &c) && c.ErrorCode() != "" {
		body.Code = c.ErrorCode()
	}
	var d Detailer
	if errors.As(err, &d) {
		body.Details = d.ErrorDetails()
	}
	return body
}

type wire[T any] struct {
	Success bool       `json:"success"`
	Data    *T         `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.err != nil {
		body := BodyOf(r.err)
		return json.Marshal(wire[T]{Success: false, Error: &body})
	}
	d := r.data
	return json.Marshal(wire[T]{Success: true, Data: &d})
}

// RemoteError is a failure decoded from the wire.
type RemoteError struct {
	Body ErrorBody
}

func (e *RemoteError) Error() string     { return e.Body.Message }
func (e *RemoteError) ErrorCode() string { return e.Body.Code }
func (e *RemoteError) ErrorDetails() any { return e.Body.Details }

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var w wire[T]
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Success {
		var zero T
		if w.Data != nil {
			zero = *w.Data
		}
		*r = Ok(zero)
		return nil
	}
	body := ErrorBody{Code: "UNKNOWN_ERROR", Message: "unknown error"}
	if w.Error != nil {
		body = *w.Error
	}
	*r = Fail[T](&RemoteError{Body: body})
	return nil
}
