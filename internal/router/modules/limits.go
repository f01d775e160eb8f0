package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-clean-starter/internal/container"
	"github.com/oksasatya/go-clean-starter/internal/interface/middleware"
)

// limit is a Redis backed limiter; it passes everything when Redis is not configured.
func limit(n int, window time.Duration, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(container.RedisScripter(), n, window, key, nil)
}

func authenticated() gin.HandlerFunc {
	return middleware.Auth(container.GetJWT(), container.GetAuthService())
}
