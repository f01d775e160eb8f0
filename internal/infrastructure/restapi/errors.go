// Package restapi implements the repositories against a remote REST API that
// answers with the {success, data, message} envelope.
package restapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/pkg/httpclient"
)

// translate maps transport failures onto domain error kinds.
func translate(err error, resource, id string) error {
	he, ok := httpclient.AsError(err)
	if !ok {
		return err
	}
	switch he.Status {
	case http.StatusNotFound:
		return errs.NotFound(resource, id)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.Unauthorized(he.Message)
	case http.StatusConflict:
		return errs.Conflict(serverCode(he.Code), he.Message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if he.Code == errs.CodeInsufficientStock {
			return errs.Domain(he.Code, he.Message)
		}
		e := errs.Validation(fieldOf(he.Details), he.Message)
		if code := serverCode(he.Code); code != "" {
			e.Code = code
		}
		return e
	}
	return fmt.Errorf("remote %s: %w", resource, err)
}

// serverCode drops the synthetic HTTP_<status> codes.
func serverCode(code string) string {
	if strings.HasPrefix(code, "HTTP_") {
		return ""
	}
	return code
}

func fieldOf(details any) string {
	m, ok := details.(map[string]any)
	if !ok {
		return ""
	}
	f, _ := m["field"].(string)
	return f
}
