package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/ratelimit"
	"github.com/gin-gonic/gin"
)

// NewRateLimitPerIP ограничивает RPS для Gin-ручек по c.ClientIP().
// Очистка неактивных IP останавливается вместе с ctx.
func NewRateLimitPerIP(
	ctx context.Context,
	limit, burst, cacheSize int,
	ttl time.Duration,
) gin.HandlerFunc {
	l := ratelimit.New(ctx, limit, burst, cacheSize, ttl)

	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
