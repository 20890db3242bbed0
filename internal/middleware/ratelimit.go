package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/adnalow/next-level/pkg/response"
)

// RateLimiter enforces per-user request quotas on top of redis INCR counters.
// When redis is unreachable requests pass through; the limiter is a guard
// rail, not a gatekeeper.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit returns a middleware that allows at most maxRequests per window for
// the authenticated user on the named action.
func (rl *RateLimiter) Limit(action string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			// No actor yet; the auth middleware rejects these downstream.
			return c.Next()
		}

		ctx := context.Background()
		key := "ratelimit:" + action + ":" + userID

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(maxRequests-int(count)))
		return c.Next()
	}
}

// JobsLimit caps job postings per poster.
func (rl *RateLimiter) JobsLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("jobs", maxPerHour, time.Hour)
}

// ApplyLimit caps application submissions per seeker.
func (rl *RateLimiter) ApplyLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("apply", maxPerHour, time.Hour)
}

// GenerateLimit caps ad-hoc badge artwork generation, which fans out to the
// LLM provider.
func (rl *RateLimiter) GenerateLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("generate", maxPerMin, time.Minute)
}

// UploadLimit caps resume uploads per user.
func (rl *RateLimiter) UploadLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("upload", maxPerHour, time.Hour)
}
