package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage"
)

// TokenLifecycle composes the codec and the session store into the refresh
// token state machine: Issued -> Revoked (rotation, explicit revoke, device
// logout) or Expired (wall clock). Neither terminal state has a way out.
type TokenLifecycle struct {
	codec    *TokenCodec
	sessions storage.SessionRepository
	users    storage.UserRepository
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewTokenLifecycle(
	codec *TokenCodec,
	sessions storage.SessionRepository,
	users storage.UserRepository,
	log *zap.SugaredLogger,
) *TokenLifecycle {
	return &TokenLifecycle{
		codec:    codec,
		sessions: sessions,
		users:    users,
		log:      log,
		now:      time.Now,
	}
}

// IssueTokens mints a fresh JTI per token, signs both classes and persists
// the refresh session. A JTI collision on insert is retried once with fresh
// identifiers; a second collision is surfaced.
func (l *TokenLifecycle) IssueTokens(ctx context.Context, userID int64, device models.DeviceContext) (*models.TokenPair, error) {
	pair, err := l.issueOnce(ctx, userID, device)
	if errors.Is(err, storage.ErrJTIExists) {
		l.log.Warnw("token identifier collision, retrying", "user_id", userID)
		pair, err = l.issueOnce(ctx, userID, device)
	}
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

func (l *TokenLifecycle) issueOnce(ctx context.Context, userID int64, device models.DeviceContext) (*models.TokenPair, error) {
	now := l.now()
	accessJTI := uuid.NewString()
	refreshJTI := uuid.NewString()

	accessToken, err := l.codec.Sign(userID, ClassAccess, accessJTI, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := l.codec.Sign(userID, ClassRefresh, refreshJTI, now)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	session := models.SessionRecord{
		UserID:       userID,
		JTI:          refreshJTI,
		RefreshToken: refreshToken,
		AccessJTI:    accessJTI,
		DeviceID:     DeviceFingerprint(device.UserAgent, device.IPAddress),
		UserAgent:    device.UserAgent,
		IPAddress:    device.IPAddress,
		ExpiresAt:    now.Add(l.codec.RefreshTTL()),
		CreatedAt:    now,
	}
	if _, err := l.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Rotate consumes the presented refresh token and issues a fresh pair.
// Consume-once: the conditional revoke decides the winner under concurrent
// rotations of the same token, and there is no rollback once the old session
// is revoked — a failed issue afterwards leaves the client re-authenticating
// rather than holding a live old token.
func (l *TokenLifecycle) Rotate(ctx context.Context, refreshToken string, device models.DeviceContext) (*models.TokenPair, error) {
	claims, err := l.codec.Verify(refreshToken, ClassRefresh)
	if err != nil {
		return nil, err
	}

	session, err := l.sessions.GetActiveSession(ctx, claims.JTI, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}

	if session.DeviceID != DeviceFingerprint(device.UserAgent, device.IPAddress) {
		l.log.Warnw("refresh token presented from a different device", "user_id", session.UserID)
		return nil, ErrRefreshTokenNotFound
	}

	user, err := l.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("get session owner: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	won, err := l.sessions.RevokeSession(ctx, session.JTI)
	if err != nil {
		return nil, fmt.Errorf("revoke session: %w", err)
	}
	if !won {
		// A concurrent rotation got there first.
		return nil, ErrRefreshTokenNotFound
	}

	return l.IssueTokens(ctx, session.UserID, device)
}

// ValidateAccess verifies the token itself, then asks the store whether the
// session behind it is still live, so device logout and rotation cut off
// outstanding access tokens before their own expiry.
func (l *TokenLifecycle) ValidateAccess(ctx context.Context, accessToken string) (*models.AccessContext, error) {
	claims, err := l.codec.Verify(accessToken, ClassAccess)
	if err != nil {
		return nil, err
	}

	active, err := l.sessions.IsAccessJTIActive(ctx, claims.JTI)
	if err != nil {
		return nil, fmt.Errorf("check access token state: %w", err)
	}
	if !active {
		return nil, ErrTokenRevoked
	}

	return &models.AccessContext{UserID: claims.UserID, JTI: claims.JTI}, nil
}

// LogoutDevice revokes every live session for the (user, device) pair.
// Idempotent; revoking a device with no sessions is a no-op.
func (l *TokenLifecycle) LogoutDevice(ctx context.Context, userID int64, device models.DeviceContext) error {
	deviceID := DeviceFingerprint(device.UserAgent, device.IPAddress)
	if err := l.sessions.RevokeDeviceSessions(ctx, userID, deviceID); err != nil {
		return fmt.Errorf("logout device: %w", err)
	}
	return nil
}
