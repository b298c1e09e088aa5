package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage"
)

type SessionRepository struct {
	db storage.DBTX
}

func NewSessionRepository(db storage.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, session models.SessionRecord) (int64, error) {
	query := `INSERT INTO sessions (user_id, jti, refresh_token, access_jti, device_id, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	var id int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		session.UserID,
		session.JTI,
		session.RefreshToken,
		session.AccessJTI,
		session.DeviceID,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrJTIExists
		}
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	return id, nil
}

// GetActiveSession requires an exact token-string match on top of the JTI
// lookup, so a valid signature for a different persisted token of the same
// identifier never resolves.
func (r *SessionRepository) GetActiveSession(ctx context.Context, jti, refreshToken string) (*models.SessionRecord, error) {
	var session models.SessionRecord
	query := `SELECT id, user_id, jti, refresh_token, access_jti, device_id, user_agent, ip_address, revoked, expires_at, created_at
		FROM sessions
		WHERE jti = $1 AND refresh_token = $2 AND revoked = FALSE AND expires_at > NOW()`
	err := r.db.QueryRowContext(ctx, query, jti, refreshToken).Scan(
		&session.ID,
		&session.UserID,
		&session.JTI,
		&session.RefreshToken,
		&session.AccessJTI,
		&session.DeviceID,
		&session.UserAgent,
		&session.IPAddress,
		&session.Revoked,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// IsAccessJTIActive ignores expiry: the codec already enforces the access
// token's own expiry, the store only answers the revocation question.
func (r *SessionRepository) IsAccessJTIActive(ctx context.Context, accessJTI string) (bool, error) {
	var active bool
	query := `SELECT EXISTS (SELECT 1 FROM sessions WHERE access_jti = $1 AND revoked = FALSE)`
	if err := r.db.QueryRowContext(ctx, query, accessJTI).Scan(&active); err != nil {
		return false, fmt.Errorf("failed to check access jti: %w", err)
	}
	return active, nil
}

// RevokeSession is a single-row conditional update: of two concurrent
// rotations of the same token only one sees a row affected.
func (r *SessionRepository) RevokeSession(ctx context.Context, jti string) (bool, error) {
	query := `UPDATE sessions SET revoked = TRUE WHERE jti = $1 AND revoked = FALSE`
	res, err := r.db.ExecContext(ctx, query, jti)
	if err != nil {
		return false, fmt.Errorf("failed to revoke session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *SessionRepository) RevokeDeviceSessions(ctx context.Context, userID int64, deviceID string) error {
	query := `UPDATE sessions SET revoked = TRUE WHERE user_id = $1 AND device_id = $2 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID, deviceID); err != nil {
		return fmt.Errorf("failed to revoke device sessions: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}
