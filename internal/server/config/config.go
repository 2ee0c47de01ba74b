// Package config handles configuration for the server and the admin CLI:
// defaults, an optional .env file, an optional JSON/JSONC/YAML config file,
// ROSTERHUB_* environment variables and command-line flags, applied in that
// order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/flagx"
	"github.com/ISTE-SCTCE/Admin/internal/server/policy"
)

// EnvPrefix prefixes every environment variable read by envconfig.
const EnvPrefix = "ROSTERHUB"

// Config holds runtime settings.
//
// StoreDriver selects the record store: json (files under DataDir), memory,
// postgres or sqlite (DatabaseDSN), badger (under DataDir). UploadBackend is
// disk (UploadDir) or s3 (the S3* fields).
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR"`
	GRPCAddr        string        `envconfig:"GRPC_ADDR"`
	StoreDriver     string        `envconfig:"STORE_DRIVER"`
	DataDir         string        `envconfig:"DATA_DIR"`
	DatabaseDSN     string        `envconfig:"DATABASE_DSN"`
	SecretKey       string        `envconfig:"SECRET_KEY"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL"`
	PresenceWindow  time.Duration `envconfig:"PRESENCE_WINDOW"`
	SignupRole      string        `envconfig:"SIGNUP_ROLE" desc:"role of self-registered accounts (legacy deployments used Admin)"`
	UploadBackend   string        `envconfig:"UPLOAD_BACKEND"`
	UploadDir       string        `envconfig:"UPLOAD_DIR"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES"`
	S3Bucket        string        `envconfig:"S3_BUCKET"`
	S3Region        string        `envconfig:"S3_REGION"`
	S3Endpoint      string        `envconfig:"S3_ENDPOINT"`
	S3AccessKey     string        `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey     string        `envconfig:"S3_SECRET_KEY"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
	LogFormat       string        `envconfig:"LOG_FORMAT"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`
	SecureCookies   bool          `envconfig:"SECURE_COOKIES"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.StoreDriver = "json"
	c.DataDir = "data"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionTTL = 7 * 24 * time.Hour
	c.PresenceWindow = 5 * time.Minute
	c.SignupRole = "Member"
	c.UploadBackend = "disk"
	c.UploadDir = "public/uploads"
	c.MaxUploadBytes = 25 << 20
	c.S3Region = "us-east-1"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ShutdownTimeout = 10 * time.Second
	c.SecureCookies = false
}

// Load applies defaults, .env, the config file at path (if any) and the
// environment. It does not look at command-line flags.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, path); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load with the file taken from -c/-config in args, followed
// by the remaining server flags.
func LoadConfig(args []string) (*Config, error) {
	cfg, err := Load(flagx.ConfigFileFlag(args))
	if err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.StoreDriver) {
	case "json", "memory", "badger":
	case "postgres", "sqlite":
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("store driver %s needs database_dsn", c.StoreDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}

	switch strings.ToLower(c.UploadBackend) {
	case "disk":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("upload backend s3 needs s3_bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown upload backend %q", c.UploadBackend))
	}

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret_key is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if c.PresenceWindow <= 0 {
		errs = append(errs, errors.New("presence_window must be positive"))
	}
	if _, err := policy.ValidateRole(c.SignupRole); err != nil {
		errs = append(errs, fmt.Errorf("signup_role: %w", err))
	}

	return errors.Join(errs...)
}
