package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig bounds how many requests a single client IP may make
// within the window.
type RateLimitConfig struct {
	MaxRequests int
	TimeWindow  time.Duration
}

// RateLimiter throttles abuse-prone endpoints with a per-IP counter in
// Redis. When Redis is unreachable the limiter fails open: availability of
// login and registration wins over throttling.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// isAllowed increments the counter for the key and reports whether the
// request stays under the limit.
func (rl *RateLimiter) isAllowed(ctx context.Context, key string, config RateLimitConfig) bool {
	if rl.client == nil {
		return true
	}

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("⚠️ Rate limiter unavailable, allowing request: %v", err)
		return true
	}

	if count == 1 {
		if err := rl.client.Expire(ctx, key, config.TimeWindow).Err(); err != nil {
			log.Printf("⚠️ Rate limiter expire failed for %s: %v", key, err)
		}
	}

	return count <= int64(config.MaxRequests)
}

// LoginRateLimitMiddleware throttles login attempts per client IP.
func (rl *RateLimiter) LoginRateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return rl.middleware("login", "Too many login attempts. Please try again later.", config)
}

// RegistrationRateLimitMiddleware throttles registrations per client IP.
func (rl *RateLimiter) RegistrationRateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return rl.middleware("register", "Too many registration attempts. Please try again later.", config)
}

// ActivationRateLimitMiddleware throttles activation email resends per client IP.
func (rl *RateLimiter) ActivationRateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return rl.middleware("activation", "Too many activation requests. Please try again later.", config)
}

func (rl *RateLimiter) middleware(scope, message string, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())

		if !rl.isAllowed(c.Request.Context(), key, config) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": message,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
