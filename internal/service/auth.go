package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

// AuthService validates primary credentials and delegates session handling
// to the lifecycle manager.
type AuthService struct {
	lifecycle TokenLifecycleManager
	users     storage.UserRepository
	log       *zap.SugaredLogger
}

func NewAuthService(lifecycle TokenLifecycleManager, users storage.UserRepository, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		lifecycle: lifecycle,
		users:     users,
		log:       log,
	}
}

func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest, device models.DeviceContext) (*models.AuthResponse, error) {
	if req.Email == "" && req.Phone == "" {
		return nil, ErrContactRequired
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.users.UserExists(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.lifecycle.IssueTokens(ctx, user.ID, device)
	if err != nil {
		return nil, err
	}

	s.log.Infow("user signed up", "user_id", user.ID)
	return &models.AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest, device models.DeviceContext) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmailOrPhone(ctx, req.ID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	user.LastLogin = time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, user.LastLogin); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	pair, err := s.lifecycle.IssueTokens(ctx, user.ID, device)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string, device models.DeviceContext) (*models.TokenPair, error) {
	return s.lifecycle.Rotate(ctx, refreshToken, device)
}

func (s *AuthService) ValidateAccess(ctx context.Context, accessToken string) (*models.AccessContext, error) {
	return s.lifecycle.ValidateAccess(ctx, accessToken)
}

func (s *AuthService) Logout(ctx context.Context, userID int64, device models.DeviceContext) error {
	return s.lifecycle.LogoutDevice(ctx, userID, device)
}

func (s *AuthService) UserInfo(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	return user, nil
}
