package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Logger   LoggerConfig   `koanf:"logger"`
	Auth     AuthConfig     `koanf:"auth"`
	Redis    RedisConfig    `koanf:"redis"`
	Storage  StorageConfig  `koanf:"storage"`
	S3       S3Config       `koanf:"s3"`
	API      APIConfig      `koanf:"api"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	CORSOrigins  []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Database        string `koanf:"name"`
	MaxConnections  int    `koanf:"max_connections"`
	MinConnections  int    `koanf:"min_connections"`
	MaxConnLifetime int    `koanf:"max_conn_lifetime"` // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
}

// AuthConfig holds token authentication configuration.
type AuthConfig struct {
	TokenSecret     string        `koanf:"token_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
}

// RedisConfig holds the Redis connection used for token revocation.
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// StorageConfig selects where recipe images are kept.
type StorageConfig struct {
	Backend   string `koanf:"backend"` // "local" or "s3"
	MediaRoot string `koanf:"media_root"`
	MediaURL  string `koanf:"media_url"`
}

// S3Config holds AWS S3 configuration for recipe images and ingredient imports.
type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Prefix    string `koanf:"prefix"`     // Path prefix within bucket (e.g., "media/")
	PublicURL string `koanf:"public_url"` // Base URL objects are served from
}

// APIConfig holds pagination defaults.
type APIConfig struct {
	PageSize    int `koanf:"page_size"`
	MaxPageSize int `koanf:"max_page_size"`
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths lists the config files searched when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// envMappings maps environment variable names onto config keys.
var envMappings = map[string]string{
	"server_host":          "server.host",
	"server_port":          "server.port",
	"server_read_timeout":  "server.read_timeout",
	"server_write_timeout": "server.write_timeout",
	"server_idle_timeout":  "server.idle_timeout",
	"cors_origins":         "server.cors_origins",

	"db_host":              "database.host",
	"db_port":              "database.port",
	"db_user":              "database.user",
	"db_password":          "database.password",
	"db_name":              "database.name",
	"db_max_connections":   "database.max_connections",
	"db_min_connections":   "database.min_connections",
	"db_max_conn_lifetime": "database.max_conn_lifetime",

	"log_level":  "logger.level",
	"log_format": "logger.format",

	"token_secret":      "auth.token_secret",
	"token_ttl":         "auth.token_ttl",
	"login_rate_limit":  "auth.login_rate_limit",
	"login_rate_window": "auth.login_rate_window",

	"redis_enabled":  "redis.enabled",
	"redis_addr":     "redis.addr",
	"redis_password": "redis.password",
	"redis_db":       "redis.db",

	"storage_backend": "storage.backend",
	"media_root":      "storage.media_root",
	"media_url":       "storage.media_url",

	"s3_bucket":     "s3.bucket",
	"s3_region":     "s3.region",
	"s3_prefix":     "s3.prefix",
	"s3_public_url": "s3.public_url",

	"page_size":     "api.page_size",
	"max_page_size": "api.max_page_size",
}

// defaultConfig returns the configuration used before files and env vars are applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "",
			Database:        "foodgram",
			MaxConnections:  25,
			MinConnections:  5,
			MaxConnLifetime: 300,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			TokenSecret:     "",
			TokenTTL:        24 * time.Hour,
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Storage: StorageConfig{
			Backend:   "local",
			MediaRoot: "media",
			MediaURL:  "/media/",
		},
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "media/",
		},
		API: APIConfig{
			PageSize:    6,
			MaxPageSize: 100,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitListField(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.MediaRoot == "" {
			return fmt.Errorf("media root is required for local storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when storage backend is s3")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when storage backend is s3")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be local or s3)", c.Storage.Backend)
	}

	if c.API.PageSize < 1 || c.API.PageSize > c.API.MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d", c.API.MaxPageSize)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransform maps an environment variable name to its config key.
// Unknown variables map to "" and are skipped.
func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

// splitListField turns a comma separated env value into a string slice.
func splitListField(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}

	if err := k.Set(path, values); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}
