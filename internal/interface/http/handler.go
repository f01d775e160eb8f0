package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/internal/interface/middleware"
	"github.com/oksasatya/go-clean-starter/pkg/response"
	"github.com/oksasatya/go-clean-starter/pkg/result"
	"github.com/oksasatya/go-clean-starter/pkg/validation"
)

func badPayload(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, errs.CodeValidation, "invalid payload", validation.ToDetails(err))
}

// reply writes a use-case outcome: failures go through response.Fail.
func reply[T any](c *gin.Context, r result.Result[T], status int, message string) {
	if r.IsFailure() {
		response.Fail(c, r.Err())
		return
	}
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	response.Success(c, status, r.Data(), message, nil)
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}
