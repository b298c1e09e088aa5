package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage"
)

// FileStore keeps rows in insertion order; listing walks them backwards to
// match the newest-first ordering of the SQL implementation.
type FileStore struct {
	mu     sync.Mutex
	nextID int64
	files  []*models.File
}

func NewFileStore() *FileStore {
	return &FileStore{}
}

func (s *FileStore) CreateFile(_ context.Context, file models.File) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	file.ID = s.nextID
	file.CreatedAt = time.Now()
	s.files = append(s.files, &file)
	return file.ID, nil
}

func (s *FileStore) GetFileByID(_ context.Context, userID, id int64) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.find(userID, id)
	if file == nil {
		return nil, storage.ErrFileNotFound
	}
	copied := *file
	return &copied, nil
}

func (s *FileStore) ListFilesByUser(_ context.Context, userID int64, limit, offset int) ([]models.File, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []models.File
	for i := len(s.files) - 1; i >= 0; i-- {
		if s.files[i].UserID == userID {
			owned = append(owned, *s.files[i])
		}
	}
	total := int64(len(owned))

	if offset >= len(owned) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (s *FileStore) UpdateFile(_ context.Context, userID, id int64, file models.File) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.find(userID, id)
	if existing == nil {
		return nil, storage.ErrFileNotFound
	}
	existing.StoredName = file.StoredName
	existing.OriginalName = file.OriginalName
	existing.MimeType = file.MimeType
	existing.SizeBytes = file.SizeBytes
	copied := *existing
	return &copied, nil
}

func (s *FileStore) DeleteFile(_ context.Context, userID, id int64) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, file := range s.files {
		if file.ID == id && file.UserID == userID {
			copied := *file
			s.files = append(s.files[:i], s.files[i+1:]...)
			return &copied, nil
		}
	}
	return nil, storage.ErrFileNotFound
}

func (s *FileStore) find(userID, id int64) *models.File {
	for _, file := range s.files {
		if file.ID == id && file.UserID == userID {
			return file
		}
	}
	return nil
}
