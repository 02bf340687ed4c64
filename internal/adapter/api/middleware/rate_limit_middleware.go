package middleware

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
	"campusmarket/pkg/response"
)

// Limiter consumes a token for key under action.
type Limiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// RateLimit throttles requests per client address.
func RateLimit(limiter Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, wait := limiter.Allow(ip, ratelimit.ActionAPIRequest)
			if !allowed {
				logger.Warn("RATE LIMIT: Blocked request from IP %s (reset in %v)", ip, wait)
				c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int(wait.Seconds())+1))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded"))
			}

			return next(c)
		}
	}
}
