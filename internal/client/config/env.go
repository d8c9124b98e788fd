package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "GOPHDRAFT_"

// dotEnvFile is loaded, if present, before the environment is read. Variables
// already set in the process environment win over the file.
var dotEnvFile = ".env"

// parseEnv overlays Config with GOPHDRAFT_* environment variables.
func parseEnv(cfg *Config) error {
	_ = godotenv.Load(dotEnvFile)

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("SERVER_ADDRESS", &cfg.ServerEndpointAddr)
	str("TRANSPORT", &cfg.Transport)
	str("JOURNAL_PATH", &cfg.JournalPath)
	str("IMAGE_STORE", &cfg.ImageStore)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_PUBLIC_BASE_URL", &cfg.S3PublicBaseURL)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)

	if err := envDuration("AUTOSAVE_DELAY", &cfg.AutosaveDelay); err != nil {
		return err
	}
	if err := envDuration("REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvPrefix + "MAX_IMAGE_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_IMAGE_SIZE: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		cfg.MaxImageSize = n
	}
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, name, err)
	}
	*dst = d
	return nil
}
