package upload

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockdocs/internal/apperr"
	"blockdocs/internal/database/dbtest"
)

func newStore(t *testing.T) *Store {
	return NewStore(filepath.Join(t.TempDir(), "uploads"), "/uploads", NewRepository(dbtest.New(t)))
}

func TestSaveImage(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	res, err := s.SaveImage(ctx, "Wiring.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))
	assert.Equal(t, int64(9), res.Size)

	data, err := os.ReadFile(filepath.Join(s.Dir, res.Filename))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	list, err := s.Attachments.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Wiring.PNG", list[0].Filename)
	assert.Equal(t, res.URL, list[0].URL)
}

func TestSaveImageRejectsOtherTypes(t *testing.T) {
	s := newStore(t)
	_, err := s.SaveImage(context.Background(), "doc.pdf", "application/pdf", strings.NewReader("x"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestSaveImageSizeLimit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.SaveImage(ctx, "big.jpg", "image/jpeg", bytes.NewReader(make([]byte, MaxImageSize+1)))
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = s.SaveImage(ctx, "edge.jpg", "image/jpeg", bytes.NewReader(make([]byte, MaxImageSize)))
	assert.NoError(t, err)
}

func TestSavePDF(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	res, err := s.SavePDF(ctx, "manual", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Filename, ".pdf"))

	_, err = s.SavePDF(ctx, "x.png", "image/png", strings.NewReader("x"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
