package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-clean-starter/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

// Register exposes expvar metrics to private networks only.
func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars",
		middleware.OnlyPrivateIP(),
		limit(120, time.Minute, middleware.KeyByIP()),
		gin.WrapH(expvar.Handler()),
	)
}
