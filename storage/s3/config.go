package s3

import (
	"errors"

	"github.com/kbukum/liquidkit/storage"
)

// Config holds S3-specific settings.
type Config struct {
	Bucket         string
	Prefix         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// FromStorageConfig extracts the S3 settings from the shared storage config.
func FromStorageConfig(cfg storage.Config) *Config {
	return &Config{
		Bucket:         cfg.Bucket,
		Prefix:         cfg.Prefix,
		Region:         cfg.Region,
		Endpoint:       cfg.Endpoint,
		AccessKey:      cfg.AccessKey,
		SecretKey:      cfg.SecretKey,
		ForcePathStyle: cfg.ForcePathStyle,
	}
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = storage.DefaultRegion
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("s3: bucket is required")
	}
	return nil
}
