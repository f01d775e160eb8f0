package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-clean-starter/pkg/response"
)

// ipFromCtx prefers the address RealIP resolved, falling back to "unknown".
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc names the bucket a request counts against. RateLimit appends the
// window and limit, so two limiters sharing a KeyFunc keep separate counters.
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "rl:ip:" + ipFromCtx(c) }
}

// KeyByIPAndPath returns a key function that limits by client IP and route
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + c.Request.Method + ":" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits authenticated callers per user and anonymous ones per IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// INCR and set the window expiry on the first hit, atomically.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// RateLimit is a fixed window limiter kept in Redis. It sends the
// X-RateLimit-* headers, skips OPTIONS and allowed requests, and fails open
// when Redis is unavailable.
func RateLimit(rdb redis.Scripter, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}

		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := bucketKey(keyFn(c), limit, window)

		res, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count := toInt(res[0])
		resetSec := (toInt(res[1]) + 999) / 1000

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(limit-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > limit {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			c.Abort()
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

func bucketKey(base string, limit int, window time.Duration) string {
	return base + ":w" + strconv.FormatInt(window.Milliseconds(), 10) + ":l" + strconv.Itoa(limit)
}

func toInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
