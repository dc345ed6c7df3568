package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit returns a fixed-window limiter keyed by client IP and route,
// backed by Redis. It protects the public auth endpoints from credential
// stuffing. When rdb is nil (Redis unavailable at startup) the middleware
// is a pass-through so the API keeps working without the limiter.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("rl:%s:%s", c.Path(), c.RealIP())

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Fail open: a broken limiter must not take the API down.
				logrus.WithError(err).Warn("rate limiter unavailable, allowing request")
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, window).Err()
			}
			if n > int64(limit) {
				ttl, _ := rdb.TTL(ctx, key).Result()
				if ttl > 0 {
					c.Response().Header().Set("Retry-After",
						strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}
