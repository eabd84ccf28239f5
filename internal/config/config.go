package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Staging backends
const (
	StagerDisk = "disk"
	StagerS3   = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Images ImagesConfig `yaml:"images"`
	AWS    AWSConfig    `yaml:"aws" envPrefix:"AWS_"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host       string `yaml:"host" env:"SERVER_HOST"`
	Port       int    `yaml:"port" env:"PORT"`
	MaxBodyMB  int    `yaml:"max_body_mb" env:"MAX_BODY_MB"`
	UploadsDir string `yaml:"uploads_dir" env:"UPLOADS_DIR"`
}

// StoreConfig selects the persistence backend. The URI scheme decides:
// mongodb, mongodb+srv, postgres, postgresql or memory.
type StoreConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI"`
	Database string `yaml:"database" env:"MONGO_DATABASE"`
}

// ImagesConfig holds image pipeline configuration
type ImagesConfig struct {
	Stager          string `yaml:"stager" env:"IMAGE_STAGER"`
	CleanupStaged   bool   `yaml:"cleanup_staged" env:"IMAGE_CLEANUP_STAGED"`
	DisplayTimezone string `yaml:"display_timezone" env:"DISPLAY_TIMEZONE"`
}

// AWSConfig holds AWS configuration for the S3 stager
type AWSConfig struct {
	Region    string `yaml:"region" env:"REGION"`
	S3Bucket  string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Prefix  string `yaml:"s3_prefix" env:"S3_PREFIX"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY_ID"`
	SecretKey string `yaml:"secret_key" env:"SECRET_ACCESS_KEY"`
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
}

// AuthConfig holds the optional bearer-token secret
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       3001,
			MaxBodyMB:  10,
			UploadsDir: "uploads",
		},
		Images: ImagesConfig{
			Stager: StagerDisk,
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// when path is not empty, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Store.URI == "" {
		return errors.New("store uri is required (MONGO_URI)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxBodyMB <= 0 {
		return fmt.Errorf("invalid max_body_mb %d", c.Server.MaxBodyMB)
	}

	switch c.Images.Stager {
	case StagerDisk:
		if c.Server.UploadsDir == "" {
			return errors.New("uploads_dir is required for the disk stager")
		}
	case StagerS3:
		if c.AWS.S3Bucket == "" {
			return errors.New("aws s3_bucket is required for the s3 stager")
		}
	default:
		return fmt.Errorf("unknown image stager %q", c.Images.Stager)
	}

	if _, err := c.DisplayLocation(); err != nil {
		return err
	}
	return nil
}

// MaxBodyBytes returns the request body limit in bytes
func (c *Config) MaxBodyBytes() int64 {
	return int64(c.Server.MaxBodyMB) << 20
}

// DisplayLocation returns the time zone list views render dates in
func (c *Config) DisplayLocation() (*time.Location, error) {
	if c.Images.DisplayTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Images.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid display_timezone: %w", err)
	}
	return loc, nil
}
