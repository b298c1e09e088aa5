package models

import "time"

type File struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	StoredName   string    `json:"-"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileList is one page of a user's files.
type FileList struct {
	Items      []File `json:"items"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	ListSize   int    `json:"list_size"`
	TotalPages int    `json:"total_pages"`
}
