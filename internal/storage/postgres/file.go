package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/storage"
)

type FileRepository struct {
	db storage.DBTX
}

func NewFileRepository(db storage.DBTX) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) CreateFile(ctx context.Context, file models.File) (int64, error) {
	query := `INSERT INTO files (user_id, stored_name, original_name, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		file.UserID,
		file.StoredName,
		file.OriginalName,
		file.MimeType,
		file.SizeBytes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert file: %w", err)
	}
	return id, nil
}

func (r *FileRepository) GetFileByID(ctx context.Context, userID, id int64) (*models.File, error) {
	query := `SELECT id, user_id, stored_name, original_name, mime_type, size_bytes, created_at
		FROM files WHERE id = $1 AND user_id = $2`
	file, err := scanFile(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

func (r *FileRepository) ListFilesByUser(ctx context.Context, userID int64, limit, offset int) ([]models.File, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM files WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	query := `SELECT id, user_id, stored_name, original_name, mime_type, size_bytes, created_at
		FROM files WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		if err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.StoredName,
			&file.OriginalName,
			&file.MimeType,
			&file.SizeBytes,
			&file.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	return files, total, nil
}

// UpdateFile swaps a row's metadata for the replacement blob and returns the
// updated row. The caller is responsible for the old blob on disk.
func (r *FileRepository) UpdateFile(ctx context.Context, userID, id int64, file models.File) (*models.File, error) {
	query := `UPDATE files SET stored_name = $3, original_name = $4, mime_type = $5, size_bytes = $6
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, stored_name, original_name, mime_type, size_bytes, created_at`
	updated, err := scanFile(r.db.QueryRowContext(
		ctx,
		query,
		id,
		userID,
		file.StoredName,
		file.OriginalName,
		file.MimeType,
		file.SizeBytes,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to update file: %w", err)
	}
	return updated, nil
}

// DeleteFile removes the metadata row and returns it so the caller can
// remove the blob from disk.
func (r *FileRepository) DeleteFile(ctx context.Context, userID, id int64) (*models.File, error) {
	query := `DELETE FROM files WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, stored_name, original_name, mime_type, size_bytes, created_at`
	file, err := scanFile(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}
	return file, nil
}

func scanFile(row *sql.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.UserID,
		&file.StoredName,
		&file.OriginalName,
		&file.MimeType,
		&file.SizeBytes,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
