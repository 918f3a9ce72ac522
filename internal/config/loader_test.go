package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndLegacyEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://foodsync@localhost/foodsync")
	t.Setenv("GEMINI_MODEL", "gemini-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres://foodsync@localhost/foodsync", cfg.Database.URL)
	assert.Equal(t, "gemini-test", cfg.LLM.Model)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "llm", cfg.Receipt.OCREngine)
	assert.False(t, cfg.Storage.StorageEnabled())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/foodsync")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSetting)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "file-test")
	t.Setenv("DATABASE_URL", "postgres://localhost/foodsync")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
http:
  addr: ":9090"
receipt:
  ocr_engine: tesseract
  poll_interval: 5s
catalog:
  path: /etc/foodsync/catalog.yaml
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "tesseract", cfg.Receipt.OCREngine)
	assert.Equal(t, 5*time.Second, cfg.Receipt.PollInterval)
	assert.Equal(t, "/etc/foodsync/catalog.yaml", cfg.Catalog.Path)
}

func TestValidate_RejectsUnknownOCREngine(t *testing.T) {
	cfg := &Config{
		Auth:     AuthConfig{JWTSecret: "x"},
		Database: DatabaseConfig{URL: "postgres://localhost"},
		Receipt:  ReceiptConfig{OCREngine: "magic"},
	}
	assert.Error(t, cfg.Validate())
}
