package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-clean-starter/internal/interface/http"
	"github.com/oksasatya/go-clean-starter/internal/interface/middleware"
)

// AuthModule routes:
// Public: POST /api/auth/login, POST /api/auth/refresh
// Protected: POST /api/auth/logout, GET /api/auth/profile
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/login", limit(10, time.Minute, middleware.KeyByIPAndPath()), m.Handler.Login)
	g.POST("/refresh", limit(60, time.Minute, middleware.KeyByIPAndPath()), m.Handler.Refresh)

	auth := g.Group("", authenticated(), limit(120, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.Profile)
	}
}
