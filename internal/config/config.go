// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath   = "config.toml"
	DefaultHTTPAddr     = ":8080"
	DefaultJWTExpiresIn = "24h"
	DefaultPGHost       = "127.0.0.1"
	DefaultPGPort       = 5432
	DefaultPGUser       = "postgres"
	DefaultPGDatabase   = "plume"
	DefaultPGSSLMode    = "disable"
	DefaultRepoDriver   = "postgres"
	DefaultStoreDriver  = "local"
	DefaultDataRoot     = "data"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log        LogConfig        `toml:"log"`
	Server     ServerConfig     `toml:"server"`
	Admin      AdminConfig      `toml:"admin"`
	Auth       AuthConfig       `toml:"auth"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Repository RepositoryConfig `toml:"repository"`
	Storage    StorageConfig    `toml:"storage"`
	Upload     UploadConfig     `toml:"upload"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AdminConfig holds the initial admin account (username, password, email).
type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Email    string `toml:"email"`
}

// AuthConfig holds JWT secret and token expiry (e.g. 24h).
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// RepositoryConfig selects the metadata persistence backend.
// Driver is "postgres" or "memory" (in-memory, for tests and demos).
type RepositoryConfig struct {
	Driver string `toml:"driver"`
}

// StorageConfig selects the binary object storage backend.
// Driver is "local" (filesystem under DataRoot) or "s3".
type StorageConfig struct {
	Driver   string   `toml:"driver"`
	DataRoot string   `toml:"data_root"`
	S3       S3Config `toml:"s3"`
}

// S3Config holds S3-compatible object storage connection parameters.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// UploadConfig holds site-wide defaults for the image ingestion pipeline.
// Zero values mean "use the pipeline's built-in default".
type UploadConfig struct {
	Accept  string `toml:"accept"`
	MaxSize int64  `toml:"max_size"`
	// MaxProcessedSize is an accepted synonym for MaxOutputSize; when both
	// are set, MaxOutputSize wins.
	MaxProcessedSize int64 `toml:"max_processed_size"`
	MaxOutputSize    int64 `toml:"max_output_size"`
	MaxWidth          int     `toml:"max_width"`
	OutputType        string  `toml:"output_type"`
	Quality           float64 `toml:"quality"`
	OnSizeTargetUnmet string  `toml:"on_size_target_unmet"`
	SniffContent      bool    `toml:"sniff_content"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "change-your-password-here",
			Email:    "you@example.com",
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Repository: RepositoryConfig{
			Driver: DefaultRepoDriver,
		},
		Storage: StorageConfig{
			Driver:   DefaultStoreDriver,
			DataRoot: DefaultDataRoot,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
