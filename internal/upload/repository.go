package upload

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blockdocs/internal/models"
)

// Repository provides access to the attachment storage.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new attachment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserts a new attachment record into the database.
func (r *Repository) Create(ctx context.Context, a *models.Attachment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO attachments (filename, unique_filename, mime_type, size, url, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.Filename, a.UniqueFilename, a.MimeType, a.Size, a.URL, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving attachment: %w", err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

// List returns attachments, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Attachment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, filename, unique_filename, mime_type, size, url, created_at FROM attachments ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("error listing attachments: %w", err)
	}
	defer rows.Close()

	attachments := []models.Attachment{}
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.Filename, &a.UniqueFilename, &a.MimeType, &a.Size, &a.URL, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
