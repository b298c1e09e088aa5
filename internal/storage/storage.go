package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mkovalev/filevault/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrFileNotFound    = errors.New("file not found")
	ErrJTIExists       = errors.New("token identifier already exists")
	ErrUserExists      = errors.New("user already exists")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Storage interface {
	SessionRepository
	UserRepository
	FileRepository
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session models.SessionRecord) (int64, error)
	GetActiveSession(ctx context.Context, jti, refreshToken string) (*models.SessionRecord, error)
	IsAccessJTIActive(ctx context.Context, accessJTI string) (bool, error)
	// RevokeSession reports whether this call flipped the revoked flag.
	// Revoking an already-revoked or unknown session is not an error.
	RevokeSession(ctx context.Context, jti string) (bool, error)
	RevokeDeviceSessions(ctx context.Context, userID int64, deviceID string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error)
	UserExists(ctx context.Context, email, phone string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type FileRepository interface {
	CreateFile(ctx context.Context, file models.File) (int64, error)
	GetFileByID(ctx context.Context, userID, id int64) (*models.File, error)
	// ListFilesByUser returns one page (newest first) plus the user's total
	// file count.
	ListFilesByUser(ctx context.Context, userID int64, limit, offset int) ([]models.File, int64, error)
	UpdateFile(ctx context.Context, userID, id int64, file models.File) (*models.File, error)
	DeleteFile(ctx context.Context, userID, id int64) (*models.File, error)
}
