package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window request limiter backed by Redis.
type RateLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewRateLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration, log *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window, log: log, now: time.Now}
}

// Handler counts requests per client IP. Redis failures let the request through.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		windowSec := int64(l.window / time.Second)
		if windowSec <= 0 {
			windowSec = 1
		}
		bucket := l.now().Unix() / windowSec
		key := "ratelimit:" + l.prefix + ":" + c.IP() + ":" + strconv.FormatInt(bucket, 10)

		ctx := c.UserContext()
		pipe := l.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.window)
		if _, err := pipe.Exec(ctx); err != nil {
			l.log.Warn("rate_limit_unavailable", zap.String("key", key), zap.Error(err))
			return c.Next()
		}

		count := incr.Val()
		remaining := int64(l.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		reset := (bucket + 1) * windowSec
		c.Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))

		if count > int64(l.limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(reset-l.now().Unix(), 10))
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
