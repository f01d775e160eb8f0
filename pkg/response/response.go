package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/pkg/httpclient"
)

type APIResponse[T any] struct {
	Status    int        `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	RequestID string     `json:"request_id"`
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Data      T          `json:"data,omitempty"`
	Meta      any        `json:"meta,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error object every failed response carries.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes a successful envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes a failed envelope with the given code and details.
func Error(ctx *gin.Context, status int, code, message string, details any) APIResponse[any] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     &ErrorBody{Code: code, Message: message, Details: details},
	}
	ctx.JSON(status, resp)
	return resp
}

// Fail writes err using StatusOf and ErrorOf.
func Fail(ctx *gin.Context, err error) APIResponse[any] {
	body := ErrorOf(err)
	return Error(ctx, StatusOf(err), body.Code, body.Message, body.Details)
}

// Abort is Fail for middleware: the rest of the chain is skipped.
func Abort(ctx *gin.Context, err error) {
	ctx.Abort()
	Fail(ctx, err)
}

// StatusOf maps an error to the HTTP status it is reported with.
func StatusOf(err error) int {
	if e, ok := errs.As(err); ok {
		switch e.Kind {
		case errs.KindValidation:
			return http.StatusBadRequest
		case errs.KindNotFound:
			return http.StatusNotFound
		case errs.KindUnauthorized:
			return http.StatusUnauthorized
		case errs.KindForbidden:
			return http.StatusForbidden
		case errs.KindConflict:
			return http.StatusConflict
		case errs.KindDomain:
			return http.StatusUnprocessableEntity
		}
	}
	if he, ok := httpclient.AsError(err); ok {
		if he.Code == httpclient.CodeTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrorOf builds the error object for err. Errors of unknown shape are
// reported without their message.
func ErrorOf(err error) ErrorBody {
	if e, ok := errs.As(err); ok {
		var details any
		if d := e.Details(); d != nil {
			details = d
		}
		return ErrorBody{Code: e.Code, Message: e.Message, Details: details}
	}
	if he, ok := httpclient.AsError(err); ok {
		return ErrorBody{Code: he.Code, Message: "upstream service failed"}
	}
	return ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}
}
