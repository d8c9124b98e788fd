package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdraft/internal/flagx"
	"github.com/dmitrijs2005/gophdraft/internal/timex"
)

// JsonConfig is the on-disk form of Config. Intervals use timex.Duration so
// they can be written as "3s" or as integer nanoseconds. Empty values leave
// the defaults in place.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	Transport          string         `json:"transport"`
	AutosaveDelay      timex.Duration `json:"autosave_delay"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	MaxImageSize       int64          `json:"max_image_size"`
	JournalPath        string         `json:"journal_path"`
	ImageStore         string         `json:"image_store"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Endpoint         string         `json:"s3_endpoint"`
	S3Region           string         `json:"s3_region"`
	S3PublicBaseURL    string         `json:"s3_public_base_url"`
	LogLevel           string         `json:"log_level"`
	LogFile            string         `json:"log_file"`
}

// parseJson overlays Config with the JSON file named by -c or -config.
func parseJson(cfg *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, jsonConfigFile, err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, jsonConfigFile, err)
	}

	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	str(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	str(&cfg.Transport, jc.Transport)
	str(&cfg.JournalPath, jc.JournalPath)
	str(&cfg.ImageStore, jc.ImageStore)
	str(&cfg.S3Bucket, jc.S3Bucket)
	str(&cfg.S3Endpoint, jc.S3Endpoint)
	str(&cfg.S3Region, jc.S3Region)
	str(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)
	str(&cfg.LogLevel, jc.LogLevel)
	str(&cfg.LogFile, jc.LogFile)

	if jc.AutosaveDelay.Duration > 0 {
		cfg.AutosaveDelay = jc.AutosaveDelay.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MaxImageSize > 0 {
		cfg.MaxImageSize = jc.MaxImageSize
	}
	return nil
}
