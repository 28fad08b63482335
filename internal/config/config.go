// Package config loads settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings.
type Config struct {
	Addr       string
	DSN        string
	SessionKey string
	UploadDir  string
	LogLevel   string
	LogFile    string
	Env        string
}

// Load reads the given .env files (".env" when none are given) and then
// the environment. A missing .env file is not an error. Variables that are
// set and non-empty in the environment win over the file; empty ones are
// filled from it.
func Load(files ...string) (*Config, error) {
	if err := loadEnvFiles(files...); err != nil {
		return nil, err
	}
	return &Config{
		Addr:       getenvOrDefault("BLOCKDOCS_ADDR", ":8080"),
		DSN:        getenvOrDefault("BLOCKDOCS_DSN", "blockdocs.db"),
		SessionKey: os.Getenv("BLOCKDOCS_SESSION_KEY"),
		UploadDir:  getenvOrDefault("BLOCKDOCS_UPLOAD_DIR", "uploads"),
		LogLevel:   getenvOrDefault("BLOCKDOCS_LOG_LEVEL", "info"),
		LogFile:    os.Getenv("BLOCKDOCS_LOG_FILE"),
		Env:        getenvOrDefault("BLOCKDOCS_ENV", "development"),
	}, nil
}

// IsDevelopment reports whether human-readable console logs are wanted.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// ValidateServe checks the settings the HTTP server cannot run without.
func (c *Config) ValidateServe() error {
	if len(c.SessionKey) < 32 {
		return errors.New("BLOCKDOCS_SESSION_KEY must be set to at least 32 characters")
	}
	if c.Addr == "" {
		return errors.New("BLOCKDOCS_ADDR must not be empty")
	}
	return nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
		for k, v := range values {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}
	return nil
}

// getenvOrDefault returns the environment variable value if set, otherwise returns def
func getenvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
