package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/service"
	"github.com/mkovalev/filevault/internal/storage"
)

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrTokenExpired, http.StatusUnauthorized},
		{service.ErrTokenInvalid, http.StatusUnauthorized},
		{service.ErrTokenRevoked, http.StatusUnauthorized},
		{service.ErrRefreshTokenNotFound, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrAccountDeactivated, http.StatusUnauthorized},
		{service.ErrUserExists, http.StatusConflict},
		{service.ErrContactRequired, http.StatusBadRequest},
		{storage.ErrFileNotFound, http.StatusNotFound},
		{fmt.Errorf("rotate: %w", service.ErrRefreshTokenNotFound), http.StatusUnauthorized},
		{fmt.Errorf("plain infrastructure failure"), http.StatusInternalServerError},
	}

	e := echo.New()
	handler := ErrorHandler(zap.NewNop().Sugar())

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler(tc.err, c)

		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		if !strings.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			t.Errorf("%v: response is not json", tc.err)
		}
	}
}

func TestErrorHandlerDoesNotLeakRefreshSubCondition(t *testing.T) {
	e := echo.New()
	handler := ErrorHandler(zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()
	handler(service.ErrRefreshTokenNotFound, e.NewContext(req, rec))

	if !strings.Contains(rec.Body.String(), "refresh token not found or revoked") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
