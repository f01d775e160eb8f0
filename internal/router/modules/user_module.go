package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-clean-starter/internal/interface/http"
	"github.com/oksasatya/go-clean-starter/internal/interface/middleware"
)

// UserModule wires user handlers into routes.
// Public: POST /api/users (sign up)
// Protected: everything else under /api/users. Writes to /:id are limited
// to the account owner or an admin.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")
	g.POST("", limit(10, time.Minute, middleware.KeyByIPAndPath()), m.Handler.Create)

	auth := g.Group("", authenticated(), limit(120, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("", m.Handler.List)
		auth.GET("/:id", m.Handler.Get)
		auth.PUT("/:id", m.Handler.Update)
		auth.PATCH("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.POST("/:id/avatar", limit(10, time.Minute, middleware.KeyByUserID()), m.Handler.UploadAvatar)
	}
}
