package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	withoutDotEnv(t)

	t.Setenv(EnvPrefix+"TRANSPORT", "http")
	t.Setenv(EnvPrefix+"AUTOSAVE_DELAY", "750ms")
	t.Setenv(EnvPrefix+"MAX_IMAGE_SIZE", "1024")
	t.Setenv(EnvPrefix+"S3_SECRET_KEY", "  secret  ")
	t.Setenv(EnvPrefix+"LOG_FILE", "")

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.LogFile = "keep.log"
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, 750*time.Millisecond, cfg.AutosaveDelay)
	assert.Equal(t, int64(1024), cfg.MaxImageSize)
	assert.Equal(t, "secret", cfg.S3SecretKey)
	assert.Equal(t, "keep.log", cfg.LogFile, "empty variables are ignored")
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
}

func TestParseEnv_InvalidValues(t *testing.T) {
	withoutDotEnv(t)

	t.Run("duration", func(t *testing.T) {
		t.Setenv(EnvPrefix+"REQUEST_TIMEOUT", "soon")
		require.ErrorIs(t, parseEnv(&Config{}), ErrInvalidConfig)
	})

	t.Run("size", func(t *testing.T) {
		t.Setenv(EnvPrefix+"MAX_IMAGE_SIZE", "5MB")
		require.ErrorIs(t, parseEnv(&Config{}), ErrInvalidConfig)
	})
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	orig := dotEnvFile
	t.Cleanup(func() { dotEnvFile = orig })

	dir := t.TempDir()
	dotEnvFile = filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotEnvFile, []byte("GOPHDRAFT_S3_BUCKET=from-file\nGOPHDRAFT_LOG_LEVEL=debug\n"), 0o600))

	// godotenv never overrides variables that are already set
	t.Setenv(EnvPrefix+"LOG_LEVEL", "warn")
	t.Cleanup(func() { _ = os.Unsetenv(EnvPrefix + "S3_BUCKET") })

	cfg := &Config{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "from-file", cfg.S3Bucket)
	assert.Equal(t, "warn", cfg.LogLevel)
}
