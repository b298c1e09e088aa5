package service

import (
	"context"

	"github.com/mkovalev/filevault/internal/models"
)

// TokenLifecycleManager is the session state machine: issue, rotate,
// validate, revoke. One concrete implementation (TokenLifecycle); consumers
// take the interface.
type TokenLifecycleManager interface {
	IssueTokens(ctx context.Context, userID int64, device models.DeviceContext) (*models.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string, device models.DeviceContext) (*models.TokenPair, error)
	ValidateAccess(ctx context.Context, accessToken string) (*models.AccessContext, error)
	LogoutDevice(ctx context.Context, userID int64, device models.DeviceContext) error
}
