package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-clean-starter/internal/application"
	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
	"github.com/oksasatya/go-clean-starter/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokensBody struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type loginBody struct {
	User   *entity.User `json:"user"`
	Tokens tokensBody   `json:"tokens"`
}

func toTokensBody(p service.TokenPair) tokensBody {
	return tokensBody{
		AccessToken:      p.AccessToken,
		AccessExpiresAt:  p.AccessTokenExpiry,
		RefreshToken:     p.RefreshToken,
		RefreshExpiresAt: p.RefreshTokenExpiry,
	}
}

func (h *AuthHandler) setCookies(c *gin.Context, p service.TokenPair) {
	h.Cookies.SetPair(c, p.AccessToken, p.AccessTokenExpiry, p.RefreshToken, p.RefreshTokenExpiry)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if res.IsFailure() {
		response.Fail(c, res.Err())
		return
	}
	out := res.Data()
	h.setCookies(c, out.Tokens)
	response.Success(c, http.StatusOK, loginBody{User: out.User, Tokens: toTokensBody(out.Tokens)}, "login successful", nil)
}

// Refresh takes the refresh token from the cookie, or from the body for
// clients that do not keep cookies.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookie)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if token == "" {
		response.Fail(c, errs.Unauthorized("missing refresh token"))
		return
	}
	res := h.Svc.Refresh(c.Request.Context(), token)
	if res.IsFailure() {
		h.Cookies.Clear(c)
		response.Fail(c, res.Err())
		return
	}
	h.setCookies(c, res.Data().Tokens)
	response.Success(c, http.StatusOK, toTokensBody(res.Data().Tokens), "token refreshed", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	res := h.Svc.Logout(c.Request.Context(), currentUserID(c))
	h.Cookies.Clear(c)
	reply(c, res, http.StatusOK, "logged out")
}

func (h *AuthHandler) Profile(c *gin.Context) {
	reply(c, h.Svc.Profile(c.Request.Context(), currentUserID(c)), http.StatusOK, "profile")
}
