package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// RateLimitRemainingHeader reports how many requests are left in the window.
const RateLimitRemainingHeader = "X-RateLimit-Remaining"

// RateLimiter counts requests per client IP in fixed windows stored in
// Redis, so the limit holds across server replicas.
type RateLimiter struct {
	rdb         redis.Cmdable
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// defaultRateWindow replaces a non-positive window.
const defaultRateWindow = time.Minute

// NewRateLimiter allows maxRequests per window for each client IP. A
// window that is not positive falls back to one minute.
func NewRateLimiter(rdb redis.Cmdable, maxRequests int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = defaultRateWindow
	}
	return &RateLimiter{rdb: rdb, maxRequests: maxRequests, window: window, now: time.Now}
}

// Allow records one request for ip and reports whether it is within the
// limit along with the remaining budget.
func (l *RateLimiter) Allow(ctx context.Context, ip string) (bool, int, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	key := fmt.Sprintf("tagboard:ratelimit:%s:%d", ip, bucket)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return true, l.maxRequests, fmt.Errorf("counting request: %w", err)
	}

	count := int(incr.Val())
	remaining := max(l.maxRequests-count, 0)
	return count <= l.maxRequests, remaining, nil
}

// Middleware rejects requests over the limit with 429. When Redis is
// unreachable requests are let through and the failure is logged.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, remaining, err := l.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				slog.Warn("rate limiter unavailable", slog.Any("error", err))
				return next(c)
			}

			c.Response().Header().Set(RateLimitRemainingHeader, strconv.Itoa(remaining))
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				return apperror.NewTooManyRequests("Rate limit exceeded. Please try again later.")
			}
			return next(c)
		}
	}
}
