package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DatabaseFilePath)
	assert.Equal(t, 0, cfg.ServerPort)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("OPENSHELF_SERVER_PORT", "8080")
	t.Setenv("OPENSHELF_JWT_SECRET", "from-env")
	t.Setenv("OPENSHELF_SESSION_TTL", "1h")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestConfigFileOverridesAndEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server_port: 9090\njwt_secret: from-file\nmedia_dir: /srv/media\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OPENSHELF_JWT_SECRET", "from-env")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "/srv/media", cfg.MediaDir)
	// Environment variables win over the file.
	assert.Equal(t, "from-env", cfg.JWTSecret)
}
