package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage"
)

// SessionStore is a mutex-guarded map implementation of
// storage.SessionRepository. It keeps the same conditional-revoke
// semantics as the Postgres store so rotation races behave identically.
type SessionStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]*models.SessionRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*models.SessionRecord)}
}

func (s *SessionStore) CreateSession(_ context.Context, session models.SessionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.JTI]; ok {
		return 0, storage.ErrJTIExists
	}
	s.nextID++
	session.ID = s.nextID
	s.sessions[session.JTI] = &session
	return session.ID, nil
}

func (s *SessionStore) GetActiveSession(_ context.Context, jti, refreshToken string) (*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[jti]
	if !ok || session.Revoked || session.RefreshToken != refreshToken || !session.ExpiresAt.After(time.Now()) {
		return nil, storage.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *SessionStore) IsAccessJTIActive(_ context.Context, accessJTI string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.AccessJTI == accessJTI && !session.Revoked {
			return true, nil
		}
	}
	return false, nil
}

func (s *SessionStore) RevokeSession(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[jti]
	if !ok || session.Revoked {
		return false, nil
	}
	session.Revoked = true
	return true, nil
}

func (s *SessionStore) RevokeDeviceSessions(_ context.Context, userID int64, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.UserID == userID && session.DeviceID == deviceID {
			session.Revoked = true
		}
	}
	return nil
}

func (s *SessionStore) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for jti, session := range s.sessions {
		if !session.ExpiresAt.After(before) {
			delete(s.sessions, jti)
			deleted++
		}
	}
	return deleted, nil
}
