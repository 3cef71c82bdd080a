package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/aquaflow/aquaflow/internal/config"
)

func limitedEcho(cfg config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.POST("/api/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(cfg, rdb))
	return e
}

func hitLogin(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitPassThroughWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"}
	rec := hitLogin(limitedEcho(cfg, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	cfg.Enabled = false
	rec = hitLogin(limitedEcho(cfg, redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitSubSecondWindow(t *testing.T) {
	// An unreachable limiter fails open, and a sub-second window must not
	// blow up computing the bucket.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: 500 * time.Millisecond, Prefix: "rl"}

	rec := hitLogin(limitedEcho(cfg, rdb))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitZeroWindowIsPassThrough(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: 0, Prefix: "rl"}

	rec := hitLogin(limitedEcho(cfg, rdb))
	assert.Equal(t, http.StatusOK, rec.Code)
}
