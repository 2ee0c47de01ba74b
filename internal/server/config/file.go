package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ISTE-SCTCE/Admin/internal/timex"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Durations accept "5m"
// style strings or integer nanoseconds. Only fields present in the file
// override earlier values.
type FileConfig struct {
	HTTPAddr        *string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr        *string         `json:"grpc_addr" yaml:"grpc_addr"`
	StoreDriver     *string         `json:"store_driver" yaml:"store_driver"`
	DataDir         *string         `json:"data_dir" yaml:"data_dir"`
	DatabaseDSN     *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey       *string         `json:"secret_key" yaml:"secret_key"`
	SessionTTL      *timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	PresenceWindow  *timex.Duration `json:"presence_window" yaml:"presence_window"`
	SignupRole      *string         `json:"signup_role" yaml:"signup_role"`
	UploadBackend   *string         `json:"upload_backend" yaml:"upload_backend"`
	UploadDir       *string         `json:"upload_dir" yaml:"upload_dir"`
	MaxUploadBytes  *int64          `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	S3Bucket        *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region        *string         `json:"s3_region" yaml:"s3_region"`
	S3Endpoint      *string         `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3AccessKey     *string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey     *string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	LogLevel        *string         `json:"log_level" yaml:"log_level"`
	LogFormat       *string         `json:"log_format" yaml:"log_format"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	SecureCookies   *bool           `json:"secure_cookies" yaml:"secure_cookies"`
}

// parseFile overlays the config file at path onto config. The format follows
// the extension: .yaml/.yml, otherwise JSON with comments and trailing
// commas allowed. An empty path is a no-op.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(jsonc.ToJSON(data), fc)
	}
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	str := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	str(&c.HTTPAddr, fc.HTTPAddr)
	str(&c.GRPCAddr, fc.GRPCAddr)
	str(&c.StoreDriver, fc.StoreDriver)
	str(&c.DataDir, fc.DataDir)
	str(&c.DatabaseDSN, fc.DatabaseDSN)
	str(&c.SecretKey, fc.SecretKey)
	str(&c.SignupRole, fc.SignupRole)
	str(&c.UploadBackend, fc.UploadBackend)
	str(&c.UploadDir, fc.UploadDir)
	str(&c.S3Bucket, fc.S3Bucket)
	str(&c.S3Region, fc.S3Region)
	str(&c.S3Endpoint, fc.S3Endpoint)
	str(&c.S3AccessKey, fc.S3AccessKey)
	str(&c.S3SecretKey, fc.S3SecretKey)
	str(&c.LogLevel, fc.LogLevel)
	str(&c.LogFormat, fc.LogFormat)

	if fc.SessionTTL != nil {
		c.SessionTTL = fc.SessionTTL.Duration
	}
	if fc.PresenceWindow != nil {
		c.PresenceWindow = fc.PresenceWindow.Duration
	}
	if fc.ShutdownTimeout != nil {
		c.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
	if fc.MaxUploadBytes != nil {
		c.MaxUploadBytes = *fc.MaxUploadBytes
	}
	if fc.SecureCookies != nil {
		c.SecureCookies = *fc.SecureCookies
	}
}
