package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	rateLimitMax    = 10
	rateLimitWindow = time.Minute
)

// RateLimit returns a middleware that enforces a fixed-window rate limit per
// client IP. Authenticated requests are not limited.
func RateLimit(rdb *redis.Client, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().Unix() / int64(rateLimitWindow/time.Second)
		key := fmt.Sprintf("zero2prod:rate_limit:%s:%d", ip, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}

		if count > rateLimitMax {
			if log != nil {
				log.Warn("rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(rateLimitWindow/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":      0,
				"code":    http.StatusTooManyRequests,
				"message": "Too many requests, slow down",
			})
			return
		}

		c.Next()
	}
}
