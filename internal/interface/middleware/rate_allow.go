package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses (or, for the debug routes, admits) requests from
// loopback and RFC 1918 / RFC 4193 addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// OnlyPrivateIP rejects requests that AllowPrivateIP would not admit.
func OnlyPrivateIP() gin.HandlerFunc {
	allow := AllowPrivateIP()
	return func(c *gin.Context) {
		if !allow(c) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
