// Package upload stores uploaded images and PDFs on disk and records them
// as attachments.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"blockdocs/internal/apperr"
	"blockdocs/internal/models"
)

const (
	MaxImageSize = 10 << 20
	MaxPDFSize   = 50 << 20
)

var errTooLarge = errors.New("file too large")

// Result describes a stored upload.
type Result struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Store writes uploads under Dir and serves them from URLPrefix.
type Store struct {
	Dir         string
	URLPrefix   string
	Attachments *Repository
}

// NewStore creates a new upload store.
func NewStore(dir, urlPrefix string, attachments *Repository) *Store {
	return &Store{Dir: dir, URLPrefix: urlPrefix, Attachments: attachments}
}

// SaveImage stores an image of at most MaxImageSize bytes.
func (s *Store) SaveImage(ctx context.Context, filename, contentType string, r io.Reader) (*Result, error) {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, apperr.Validation("file must be an image, got %q", contentType)
	}
	return s.save(ctx, filename, contentType, r, MaxImageSize)
}

// SavePDF stores a PDF of at most MaxPDFSize bytes.
func (s *Store) SavePDF(ctx context.Context, filename, contentType string, r io.Reader) (*Result, error) {
	if !strings.Contains(strings.ToLower(contentType), "pdf") {
		return nil, apperr.Validation("file must be a PDF, got %q", contentType)
	}
	if filepath.Ext(filename) == "" {
		filename += ".pdf"
	}
	return s.save(ctx, filename, contentType, r, MaxPDFSize)
}

func (s *Store) save(ctx context.Context, filename, contentType string, r io.Reader, limit int64) (*Result, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload directory: %w", err)
	}

	unique := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	dst := filepath.Join(s.Dir, unique)

	size, err := writeLimited(dst, r, limit)
	if err != nil {
		os.Remove(dst)
		if errors.Is(err, errTooLarge) {
			return nil, apperr.Validation("file exceeds the %d MB limit", limit>>20)
		}
		return nil, err
	}

	url := path.Join(s.URLPrefix, unique)
	a := &models.Attachment{
		Filename:       filepath.Base(filename),
		UniqueFilename: unique,
		MimeType:       contentType,
		Size:           size,
		URL:            url,
	}
	if s.Attachments != nil {
		if err := s.Attachments.Create(ctx, a); err != nil {
			os.Remove(dst)
			return nil, err
		}
	}
	return &Result{URL: url, Filename: unique, Size: size}, nil
}

func writeLimited(dst string, r io.Reader, limit int64) (int64, error) {
	f, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("error saving the file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		return n, fmt.Errorf("error writing the file: %w", err)
	}
	if n > limit {
		return n, errTooLarge
	}
	return n, nil
}
