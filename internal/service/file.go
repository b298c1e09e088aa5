package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage"
	"github.com/mkovalev/filevault/internal/util"
)

// FileService stores uploaded blobs on disk under random names and keeps
// owner-scoped metadata rows alongside.
type FileService struct {
	files   storage.FileRepository
	dir     string
	maxSize int64
	log     *zap.SugaredLogger
}

func NewFileService(files storage.FileRepository, cfg *util.UploadConfig, log *zap.SugaredLogger) (*FileService, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileService{
		files:   files,
		dir:     cfg.Dir,
		maxSize: cfg.MaxSizeByte,
		log:     log,
	}, nil
}

func (s *FileService) MaxUploadSize() int64 {
	return s.maxSize
}

func (s *FileService) Save(ctx context.Context, userID int64, originalName, mimeType string, src io.Reader) (*models.File, error) {
	storedName, size, err := s.writeBlob(originalName, src)
	if err != nil {
		return nil, err
	}

	file := models.File{
		UserID:       userID,
		StoredName:   storedName,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    size,
	}
	id, err := s.files.CreateFile(ctx, file)
	if err != nil {
		s.removeBlob(filepath.Join(s.dir, storedName))
		return nil, fmt.Errorf("persist file metadata: %w", err)
	}
	file.ID = id

	s.log.Infow("file uploaded", "user_id", userID, "file_id", id, "size", size)
	return &file, nil
}

// Update replaces a file's content and metadata in place, keeping its id.
// The new blob lands under a fresh stored name; the old one is unlinked only
// after the row update succeeds.
func (s *FileService) Update(ctx context.Context, userID, id int64, originalName, mimeType string, src io.Reader) (*models.File, error) {
	old, err := s.files.GetFileByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	storedName, size, err := s.writeBlob(originalName, src)
	if err != nil {
		return nil, err
	}

	updated, err := s.files.UpdateFile(ctx, userID, id, models.File{
		StoredName:   storedName,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    size,
	})
	if err != nil {
		s.removeBlob(filepath.Join(s.dir, storedName))
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update file metadata: %w", err)
	}
	s.removeBlob(s.BlobPath(old))

	s.log.Infow("file replaced", "user_id", userID, "file_id", id, "size", size)
	return updated, nil
}

const defaultListSize = 10

// List returns one page of the user's files, newest first. Out-of-range and
// zero paging values fall back to the first page of ten.
func (s *FileService) List(ctx context.Context, userID int64, page, listSize int) (*models.FileList, error) {
	if listSize <= 0 {
		listSize = defaultListSize
	}
	if page <= 0 {
		page = 1
	}

	items, total, err := s.files.ListFilesByUser(ctx, userID, listSize, (page-1)*listSize)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	totalPages := int((total + int64(listSize) - 1) / int64(listSize))
	if totalPages == 0 {
		totalPages = 1
	}
	return &models.FileList{
		Items:      items,
		Total:      total,
		Page:       page,
		ListSize:   listSize,
		TotalPages: totalPages,
	}, nil
}

func (s *FileService) Get(ctx context.Context, userID, id int64) (*models.File, error) {
	return s.files.GetFileByID(ctx, userID, id)
}

// BlobPath returns the on-disk location of a file's content.
func (s *FileService) BlobPath(file *models.File) string {
	return filepath.Join(s.dir, file.StoredName)
}

// Delete removes the metadata row first; a blob left behind by a failed
// unlink is logged and picked up manually, never resurrected.
func (s *FileService) Delete(ctx context.Context, userID, id int64) error {
	file, err := s.files.DeleteFile(ctx, userID, id)
	if err != nil {
		return err
	}
	s.removeBlob(s.BlobPath(file))
	return nil
}

// writeBlob streams src to disk under a fresh random name and reports the
// byte count. On write failure the partial blob is unlinked.
func (s *FileService) writeBlob(originalName string, src io.Reader) (string, int64, error) {
	storedName := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, storedName)

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		s.removeBlob(path)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	return storedName, size, nil
}

func (s *FileService) removeBlob(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Errorw("failed to remove blob", "path", path, "error", err)
	}
}
