package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage"
)

type UserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]*models.User)}
}

func (s *UserStore) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if (user.Email != "" && existing.Email == user.Email) ||
			(user.Phone != "" && existing.Phone == user.Phone) {
			return nil, storage.ErrUserExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.IsActive = true
	user.CreatedAt = time.Now()
	s.users[user.ID] = &user
	copied := user
	return &copied, nil
}

func (s *UserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *UserStore) GetUserByEmailOrPhone(_ context.Context, identifier string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if (user.Email != "" && user.Email == identifier) ||
			(user.Phone != "" && user.Phone == identifier) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (s *UserStore) UserExists(_ context.Context, email, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if (email != "" && user.Email == email) || (phone != "" && user.Phone == phone) {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[id]; ok {
		user.LastLogin = at
	}
	return nil
}

// SetActive flips the account gate; used to exercise deactivation paths.
func (s *UserStore) SetActive(id int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[id]; ok {
		user.IsActive = active
	}
}
