// Package config loads Tagboard's configuration from environment variables.
// All config is centralized here so no other package reads env vars
// directly. A .env file in the working directory, if present, is loaded
// first; real environment variables always win over it.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Config holds all application configuration. Populated once at startup
// and passed to other packages by dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public URL of the console, used for CORS.
	BaseURL string

	// LogLevel controls log verbosity in production: "debug", "info",
	// "warn", "error". Development always logs at debug.
	LogLevel string

	Database DatabaseConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Limits   LimitsConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// are read from separate env vars; DATABASE_URL, when set, wins.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port form (default "localhost:3306").
	Host string

	User     string
	Password string
	Name     string

	// dsnOverride is set from DATABASE_URL.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// MigrationsPath is the directory holding *.up.sql / *.down.sql files.
	MigrationsPath string
}

// DSN returns the go-sql-driver/mysql connection string. FormatDSN escapes
// special characters in the password. ClientFoundRows makes RowsAffected
// count matched rows, which the repositories use for not-found checks.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

// ensurePort appends defaultPort when host has none, so DB_HOST=mydb works.
func ensurePort(host, defaultPort string) string {
	if _, _, err := net.SplitHostPort(host); err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379/0").
	URL string
}

// CatalogConfig tunes collection evaluation.
type CatalogConfig struct {
	// PreviewCacheTTL is how long a memoized preview stays in Redis.
	// Zero disables the cache.
	PreviewCacheTTL time.Duration

	// RefreshInterval is how often tag-based collection counts are
	// recomputed. Zero disables the refresh worker.
	RefreshInterval time.Duration

	// RefreshConcurrency bounds concurrent evaluations in one refresh pass.
	RefreshConcurrency int
}

// LimitsConfig holds request limits.
type LimitsConfig struct {
	// RateLimitRequests is the number of API requests allowed per client IP
	// per RateLimitWindow.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// MaxUploadSize caps collection import files, in bytes.
	MaxUploadSize int64
}

// Load reads configuration from the environment with development defaults.
// Returns an error when a production deployment is missing required values
// or a setting is out of range.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("ignoring unreadable .env file", slog.Any("error", err))
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "tagboard"),
			Password:        getEnv("DB_PASSWORD", "tagboard"),
			Name:            getEnv("DB_NAME", "tagboard"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "db/migrations"),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},

		Catalog: CatalogConfig{
			PreviewCacheTTL:    getEnvDuration("PREVIEW_CACHE_TTL", 2*time.Minute),
			RefreshInterval:    getEnvDuration("REFRESH_INTERVAL", 15*time.Minute),
			RefreshConcurrency: getEnvInt("REFRESH_CONCURRENCY", 4),
		},

		Limits: LimitsConfig{
			RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 300),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			MaxUploadSize:     getEnvInt64("MAX_UPLOAD_SIZE", 5*1024*1024), // 5MB
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Catalog.RefreshConcurrency <= 0 {
		return fmt.Errorf("REFRESH_CONCURRENCY must be positive, got %d", c.Catalog.RefreshConcurrency)
	}
	if c.Limits.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Limits.RateLimitRequests)
	}
	if c.Limits.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.Limits.RateLimitWindow)
	}
	if c.Limits.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.Limits.MaxUploadSize)
	}

	// Production must not run on the development database credentials.
	if c.IsProduction() && c.Database.dsnOverride == "" && c.Database.Password == "tagboard" {
		return fmt.Errorf("DB_PASSWORD or DATABASE_URL is required in production")
	}
	return nil
}

// IsDevelopment returns true when running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true for "production" and "prod", any case.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// --- env helpers ---

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration such as "90s" or "15m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
