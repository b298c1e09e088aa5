package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkovalev/filevault/internal/util"
)

type TokenClass string

const (
	ClassAccess  TokenClass = "access"
	ClassRefresh TokenClass = "refresh"
)

// TokenCodec signs and verifies the stateless half of a session: compact
// HS512 JWTs carrying {subject, class, jti, expiry}. Each class has its own
// secret, so a refresh token can never be presented as an access token even
// if one secret leaks.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenCodec(cfg *util.TokenConfig) *TokenCodec {
	return &TokenCodec{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

type jwtClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenClaims is the verified claim set handed back to the lifecycle manager.
type TokenClaims struct {
	UserID    int64
	JTI       string
	ExpiresAt time.Time
}

func (c *TokenCodec) Sign(userID int64, class TokenClass, jti string, now time.Time) (string, error) {
	claims := &jwtClaims{
		UserID:    strconv.FormatInt(userID, 10),
		TokenType: string(class),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(class))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(c.secret(class))
	if err != nil {
		return "", fmt.Errorf("signed string: %w", err)
	}

	return signedToken, nil
}

// Verify checks signature, class and expiry. Expiry is a hard boundary
// against wall-clock time; there is no leeway window. An expired but
// well-signed token fails with ErrTokenExpired, everything else with
// ErrTokenInvalid.
func (c *TokenCodec) Verify(tokenString string, class TokenClass) (*TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}

	parsedToken, err := jwt.ParseWithClaims(
		tokenString,
		&jwtClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return c.secret(class), nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(*jwtClaims)
	if !ok || !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != string(class) || claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &TokenClaims{
		UserID:    userID,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

func (c *TokenCodec) secret(class TokenClass) []byte {
	if class == ClassRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}

func (c *TokenCodec) ttl(class TokenClass) time.Duration {
	if class == ClassRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}
