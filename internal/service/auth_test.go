package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage/memory"
)

func newAuthEnv(t *testing.T) (*AuthService, *memory.UserStore) {
	t.Helper()

	sessions := memory.NewSessionStore()
	users := memory.NewUserStore()
	lifecycle := NewTokenLifecycle(newTestCodec(), sessions, users, zap.NewNop().Sugar())
	return NewAuthService(lifecycle, users, zap.NewNop().Sugar()), users
}

func TestSignUpThenSignIn(t *testing.T) {
	auth, _ := newAuthEnv(t)
	ctx := context.Background()

	signUp, err := auth.SignUp(ctx, models.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	}, deviceOne)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if signUp.AccessToken == "" || signUp.RefreshToken == "" {
		t.Fatal("sign up returned an incomplete token pair")
	}

	if _, err := auth.ValidateAccess(ctx, signUp.AccessToken); err != nil {
		t.Fatalf("validate access after sign up: %v", err)
	}

	signIn, err := auth.SignIn(ctx, models.SignInRequest{
		ID:       "alice@example.com",
		Password: "correct-horse",
	}, deviceOne)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if signIn.User.ID != signUp.User.ID {
		t.Errorf("sign in user id = %d, want %d", signIn.User.ID, signUp.User.ID)
	}
	if signIn.User.LastLogin.IsZero() {
		t.Error("sign in did not record last login")
	}
}

func TestSignUpValidation(t *testing.T) {
	auth, _ := newAuthEnv(t)
	ctx := context.Background()

	if _, err := auth.SignUp(ctx, models.SignUpRequest{Password: "long-enough"}, deviceOne); !errors.Is(err, ErrContactRequired) {
		t.Errorf("no contact: err = %v, want ErrContactRequired", err)
	}
	if _, err := auth.SignUp(ctx, models.SignUpRequest{Email: "a@b.c", Password: "short"}, deviceOne); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password: err = %v, want ErrPasswordTooShort", err)
	}

	if _, err := auth.SignUp(ctx, models.SignUpRequest{Email: "a@b.c", Password: "long-enough"}, deviceOne); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := auth.SignUp(ctx, models.SignUpRequest{Email: "a@b.c", Password: "long-enough"}, deviceOne); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate: err = %v, want ErrUserExists", err)
	}
}

func TestSignInFailures(t *testing.T) {
	auth, users := newAuthEnv(t)
	ctx := context.Background()

	signUp, err := auth.SignUp(ctx, models.SignUpRequest{
		Phone:    "+12025550123",
		Password: "correct-horse",
	}, deviceOne)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := auth.SignIn(ctx, models.SignInRequest{ID: "+12025550123", Password: "wrong"}, deviceOne); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := auth.SignIn(ctx, models.SignInRequest{ID: "nobody@example.com", Password: "whatever"}, deviceOne); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}

	users.SetActive(signUp.User.ID, false)
	if _, err := auth.SignIn(ctx, models.SignInRequest{ID: "+12025550123", Password: "correct-horse"}, deviceOne); !errors.Is(err, ErrAccountDeactivated) {
		t.Errorf("deactivated: err = %v, want ErrAccountDeactivated", err)
	}
}

func TestRefreshAndLogoutFlow(t *testing.T) {
	auth, _ := newAuthEnv(t)
	ctx := context.Background()

	signUp, err := auth.SignUp(ctx, models.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	}, deviceOne)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	pair, err := auth.Refresh(ctx, signUp.RefreshToken, deviceOne)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := auth.Refresh(ctx, signUp.RefreshToken, deviceOne); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Fatalf("reused refresh token: err = %v, want ErrRefreshTokenNotFound", err)
	}

	if err := auth.Logout(ctx, signUp.User.ID, deviceOne); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.ValidateAccess(ctx, pair.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("access token after logout: err = %v, want ErrTokenRevoked", err)
	}
}
