package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"BLOCKDOCS_ADDR", "BLOCKDOCS_DSN", "BLOCKDOCS_SESSION_KEY", "BLOCKDOCS_ENV"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "blockdocs.db", cfg.DSN)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.True(t, cfg.IsDevelopment())
	assert.Error(t, cfg.ValidateServe())
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("BLOCKDOCS_ADDR", "")
	t.Setenv("BLOCKDOCS_SESSION_KEY", "")
	t.Setenv("BLOCKDOCS_ENV", "production")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BLOCKDOCS_ADDR=:9090\nBLOCKDOCS_SESSION_KEY=0123456789abcdef0123456789abcdef\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.False(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.ValidateServe())
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	t.Setenv("BLOCKDOCS_ADDR", ":7070")
	t.Setenv("BLOCKDOCS_DSN", "")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BLOCKDOCS_ADDR=:9090\nBLOCKDOCS_DSN=docs.db\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "docs.db", cfg.DSN)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BLOCKDOCS_ADDR='unterminated\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
