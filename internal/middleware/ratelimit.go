package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/detske-trhy/backend/pkg/response"
)

// RateLimit returns a fixed-window per-IP rate limiter for the public
// registration form, backed by Redis INCR + EXPIRE. A nil client disables the
// limiter; Redis errors fail open so a flaky Redis never blocks submissions.
func RateLimit(client *redis.Client, perMinute int, logger *zap.Logger) gin.HandlerFunc {
	if client == nil || perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:register:%s:%d", c.ClientIP(), time.Now().Unix()/60)
		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, time.Minute)
		}
		if count > int64(perMinute) {
			response.TooManyRequests(c, "too many registration attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
