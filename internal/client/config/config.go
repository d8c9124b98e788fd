package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"

	ImageStoreBackend = "backend"
	ImageStoreS3      = "s3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the gophdraft CLI.
//
// Durations are time.Duration values; MaxImageSize is in bytes.
type Config struct {
	ServerEndpointAddr string
	Transport          string

	AutosaveDelay  time.Duration
	RequestTimeout time.Duration
	MaxImageSize   int64

	JournalPath string

	ImageStore      string
	S3Bucket        string
	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	LogLevel string
	LogFile  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Transport = TransportGRPC
	c.AutosaveDelay = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.MaxImageSize = 5 << 20
	c.JournalPath = "drafts.db"
	c.ImageStore = ImageStoreBackend
	c.S3Region = "auto"
	c.LogLevel = "info"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportGRPC, TransportHTTP:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	switch c.ImageStore {
	case ImageStoreBackend:
	case ImageStoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("%w: s3 image store needs a bucket", ErrInvalidConfig)
		}
		// image URLs are built from one of these
		if c.S3Endpoint == "" && c.S3PublicBaseURL == "" && (c.S3Region == "" || c.S3Region == "auto") {
			return fmt.Errorf("%w: s3 image store needs an endpoint, a public base url or an aws region", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown image store %q", ErrInvalidConfig, c.ImageStore)
	}
	if c.AutosaveDelay <= 0 {
		return fmt.Errorf("%w: autosave delay must be positive", ErrInvalidConfig)
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("%w: max image size must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
