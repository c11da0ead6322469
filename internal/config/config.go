// Package config manages application configuration
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultSecretKey is the development signing secret. Production refuses it.
const DefaultSecretKey = "dev-secret-key-change-in-production"

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        string `yaml:"port" env:"SHOWROOM_PORT" env-default:"8080"`
	Environment string `yaml:"environment" env:"SHOWROOM_ENV" env-default:"development"` // "development" or "production"
	LogLevel    string `yaml:"log_level" env:"SHOWROOM_LOG_LEVEL" env-default:"info"`

	Database DatabaseConfig `yaml:"database"`

	// Security
	SecretKey string `yaml:"secret_key" env:"SHOWROOM_SECRET_KEY" env-default:"dev-secret-key-change-in-production"` // For token signing

	// Allowed CORS origins; "*" allows any.
	AllowedOrigins []string `yaml:"allowed_origins" env:"SHOWROOM_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	Media MediaConfig `yaml:"media"`
}

// DatabaseConfig selects the SQL driver and DSN
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"SHOWROOM_DATABASE_DRIVER" env-default:"sqlite3"` // "sqlite3" or "pgx"
	URL    string `yaml:"url" env:"SHOWROOM_DATABASE_URL" env-default:"showroom.db"`
}

// MediaConfig configures where uploaded images go
type MediaConfig struct {
	Backend        string   `yaml:"backend" env:"SHOWROOM_MEDIA_BACKEND" env-default:"local"` // "local" or "s3"
	UploadDir      string   `yaml:"upload_dir" env:"SHOWROOM_UPLOAD_DIR" env-default:"uploads"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" env:"SHOWROOM_MAX_UPLOAD_BYTES" env-default:"10485760"`
	S3             S3Config `yaml:"s3"`
}

// S3Config holds MinIO/S3 credentials for the s3 media backend
type S3Config struct {
	Endpoint      string `yaml:"endpoint" env:"SHOWROOM_S3_ENDPOINT"`
	AccessKey     string `yaml:"access_key" env:"SHOWROOM_S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"SHOWROOM_S3_SECRET_KEY"`
	Bucket        string `yaml:"bucket" env:"SHOWROOM_S3_BUCKET" env-default:"showroom"`
	Region        string `yaml:"region" env:"SHOWROOM_S3_REGION" env-default:"us-east-1"`
	PublicBaseURL string `yaml:"public_base_url" env:"SHOWROOM_S3_PUBLIC_BASE_URL"`
}

// Load reads configuration from an optional YAML file and environment
// variables. An empty path falls back to SHOWROOM_CONFIG, then to env only.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SHOWROOM_CONFIG")
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail at first use
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Media.Backend {
	case "local":
	case "s3":
		if c.Media.S3.Endpoint == "" {
			return errors.New("s3 media backend requires SHOWROOM_S3_ENDPOINT")
		}
	default:
		return fmt.Errorf("unsupported media backend %q", c.Media.Backend)
	}

	if c.SecretKey == "" {
		return errors.New("secret key must not be empty")
	}
	if c.IsProduction() && c.SecretKey == DefaultSecretKey {
		return errors.New("SHOWROOM_SECRET_KEY must be set in production")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
