package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
	"github.com/oksasatya/go-clean-starter/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
)

// SessionChecker reports whether sid is the user's current session.
type SessionChecker interface {
	VerifySession(ctx context.Context, userID, sessionID string) bool
}

// bearerToken reads "Authorization: Bearer <t>" and falls back to the
// access_token cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	token, _ := c.Cookie(helpers.AccessCookie)
	return token
}

// Auth validates the access token and ensures its session is still the
// user's active one. A nil sessions checker skips the session lookup.
func Auth(tokens service.TokenIssuer, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, errs.Unauthorized("missing access token"))
			return
		}
		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, errs.Unauthorized("invalid access token"))
			return
		}
		if sessions != nil && !sessions.VerifySession(c.Request.Context(), claims.UserID, claims.SessionID) {
			response.Abort(c, errs.Unauthorized("session not found"))
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxSessionIDKey, claims.SessionID)
		c.Next()
	}
}
