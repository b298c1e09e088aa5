package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/service"
	"github.com/mkovalev/filevault/internal/storage"
	"github.com/mkovalev/filevault/internal/util"
)

func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if status, ok := statusFor(err); ok {
			writeJSON(c, log, status, err.Error())
			return
		}

		var respErr util.ResponseError
		if errors.As(err, &respErr) {
			writeJSON(c, log, respErr.Status, respErr.Msg)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code == http.StatusInternalServerError {
				log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
			}
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			writeJSON(c, log, he.Code, msg)
			return
		}

		log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		writeJSON(c, log, http.StatusInternalServerError, "internal server error")
	}
}

// statusFor maps the core's sentinel errors to HTTP statuses. Token failures
// stay 401 with their collapsed messages; nothing here leaks which
// sub-condition rejected a refresh token.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrRefreshTokenNotFound),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDeactivated):
		return http.StatusUnauthorized, true
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, true
	case errors.Is(err, service.ErrContactRequired),
		errors.Is(err, service.ErrPasswordTooShort):
		return http.StatusBadRequest, true
	case errors.Is(err, storage.ErrFileNotFound),
		errors.Is(err, storage.ErrUserNotFound):
		return http.StatusNotFound, true
	default:
		return 0, false
	}
}

func writeJSON(c echo.Context, log *zap.SugaredLogger, status int, reason string) {
	if err := c.JSON(status, map[string]string{"reason": reason}); err != nil {
		log.Errorw("failed to write json response", "error", err)
	}
}
