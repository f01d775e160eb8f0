package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-clean-starter/internal/interface/http"
	"github.com/oksasatya/go-clean-starter/internal/interface/middleware"
)

// ProductModule: catalog reads are public, writes need a session.
type ProductModule struct {
	Handler *handlers.ProductHandler
}

func NewProductModule(h *handlers.ProductHandler) *ProductModule {
	return &ProductModule{Handler: h}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/products")
	g.GET("", m.Handler.List)
	g.GET("/:id", m.Handler.Get)

	auth := g.Group("", authenticated(), limit(120, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("", m.Handler.Create)
		auth.PUT("/:id", m.Handler.Update)
		auth.PATCH("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.POST("/:id/stock", m.Handler.AdjustStock)
	}
}
