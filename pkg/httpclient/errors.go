package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes produced by the client itself. Non-2xx responses use the code
// from the server's error envelope or HTTP_<status>.
const (
	CodeNetwork  = "NETWORK_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"
	CodeParse    = "PARSE_ERROR"
	CodeRequest  = "REQUEST_ERROR"
	CodeCanceled = "REQUEST_CANCELED"
)

// Error is the uniform failure shape for every request.
type Error struct {
	Status  int // 0 when no response was received
	Code    string
	Message string
	Details any

	retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error      { return e.cause }
func (e *Error) ErrorCode() string  { return e.Code }
func (e *Error) ErrorDetails() any  { return e.Details }
func (e *Error) Retryable() bool    { return e.retryable }
func (e *Error) Timeout() bool      { return e.Code == CodeTimeout }
func (e *Error) IsStatus(s int) bool { return e.Status == s }

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func networkError(err error) *Error {
	return &Error{Code: CodeNetwork, Message: err.Error(), retryable: true, cause: err}
}

func timeoutError(err error) *Error {
	return &Error{Code: CodeTimeout, Message: "request timed out", retryable: true, cause: err}
}

func parseError(status int, err error) *Error {
	return &Error{Status: status, Code: CodeParse, Message: "invalid response body: " + err.Error(), cause: err}
}

func statusError(status int, code, message string, details any) *Error {
	if code == "" {
		code = fmt.Sprintf("HTTP_%d", status)
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Status: status, Code: code, Message: message, Details: details}
}
