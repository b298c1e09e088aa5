package service

import "errors"

// Sentinel errors for the auth core; the HTTP layer maps them to status codes.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenRevoked = errors.New("token revoked")

	// ErrRefreshTokenNotFound deliberately covers revoked, store-expired,
	// device-mismatched and never-issued refresh tokens alike, so a caller
	// cannot probe which condition failed.
	ErrRefreshTokenNotFound = errors.New("refresh token not found or revoked")

	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user with this email or phone already exists")
	ErrContactRequired    = errors.New("either email or phone must be provided")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)
