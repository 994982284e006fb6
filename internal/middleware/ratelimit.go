package middleware

import (
	"fmt"
	"net/http"
	"time"

	v1 "cyberlab/api/v1"
	"cyberlab/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	loginRateLimitWindow = time.Minute
	loginRateLimitMax    = 10
)

// LoginRateLimit caps login attempts per client IP using a redis counter.
// Without redis it degrades to a no-op so the server still runs in single
// node setups.
func LoginRateLimit(rdb *redis.Client, logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if rdb == nil {
			ctx.Next()
			return
		}
		key := fmt.Sprintf("ratelimit:login:%s", ctx.ClientIP())
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.WithContext(ctx).Warn("rate limit counter unavailable", zap.Error(err))
			ctx.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, loginRateLimitWindow)
		}
		if count > loginRateLimitMax {
			v1.HandleError(ctx, http.StatusTooManyRequests, v1.ErrTooManyRequests, nil)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
