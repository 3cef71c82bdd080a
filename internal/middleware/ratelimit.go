package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aquaflow/aquaflow/internal/config"
)

// RateLimit returns a fixed-window limiter keyed by client IP and route,
// intended for the credential endpoints. With no redis client or the limiter
// disabled it is a pass-through. Redis failures fail open: an unreachable
// limiter must not lock everyone out.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil || cfg.Window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Bucket by nanoseconds so sub-second windows stay valid.
			bucket := time.Now().UnixNano() / int64(cfg.Window)
			key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, c.RealIP(), c.Path(), bucket)

			ctx := c.Request().Context()
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				slog.Warn("rate limiter unavailable", "error", err)
				return next(c)
			}
			if count == 1 {
				rdb.Expire(ctx, key, cfg.Window)
			}
			if count > int64(cfg.Limit) {
				retryAfter := int(cfg.Window.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "Too many attempts, try again later"})
			}
			return next(c)
		}
	}
}
