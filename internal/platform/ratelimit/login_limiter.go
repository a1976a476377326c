// Package ratelimit provides a Redis-backed fixed-window rate limiter for
// the public authentication endpoints.
package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"users_backend/internal/platform/config"
)

// LoginLimiter returns a Gin middleware that limits requests per client IP
// and route within a fixed window. When Redis is unavailable the limiter
// fails open: authentication must keep working without the cache tier.
func LoginLimiter(rdb *redis.Client, cfg config.Config) gin.HandlerFunc {
	if rdb == nil || cfg.LoginRateLimit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			slog.Warn("rate limiter unavailable, failing open", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, cfg.LoginRateWindow).Err(); err != nil {
				slog.Warn("failed to set rate limit window", "key", key, "error", err)
			}
		}

		if count > int64(cfg.LoginRateLimit) {
			slog.Warn("rate limit exceeded", "key", key, "count", count)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
