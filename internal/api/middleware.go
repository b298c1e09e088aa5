package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/service"
)

const bearerPrefix = "Bearer "

// BearerAuthMiddleware validates the access token on protected routes and
// stashes the verified {userID, jti} pair in the echo context.
func BearerAuthMiddleware(lifecycle service.TokenLifecycleManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
			}

			accessCtx, err := lifecycle.ValidateAccess(
				c.Request().Context(),
				strings.TrimPrefix(authHeader, bearerPrefix),
			)
			if err != nil {
				return err
			}

			c.Set(models.MwUserIDKey, accessCtx.UserID)
			c.Set(models.MwJTIKey, accessCtx.JTI)

			return next(c)
		}
	}
}

// RateLimitMiddleware guards credential endpoints per client IP. Redis
// failures fail open: availability over strictness.
func RateLimitMiddleware(limiter *service.LoginRateLimiter, log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Errorw("rate limiter unavailable", "error", err)
				return next(c)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
			}
			return next(c)
		}
	}
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", c.Request().Method,
				"uri", v.URI,
				"status", v.Status,
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				a.log.Errorw("Request", fields...)
			} else {
				a.log.Infow("Request", fields...)
			}
			return nil
		},
	}
}
