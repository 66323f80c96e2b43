// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Source kinds understood by the record loader.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
	SourceMySQL    = "mysql"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Source   SourceConfig
	Grid     GridConfig
	Session  SessionConfig
	Cache    CacheConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, required when SOURCE_KIND=postgres.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SourceConfig selects where token records are read from.
type SourceConfig struct {
	// Kind is "file", "postgres", "sqlite" or "mysql" (default: file)
	Kind string `env:"SOURCE_KIND" default:"file"`

	// File is the JSON records file for the file source (default: tokens.json)
	File string `env:"SOURCE_FILE" default:"tokens.json"`

	// Table is the database table for the postgres, sqlite and mysql sources (default: tokens)
	Table string `env:"SOURCE_TABLE" default:"tokens"`

	// DSN is the sqlite file path or mysql DSN
	DSN string `env:"SOURCE_DSN"`

	// FetchTimeout bounds a single record fetch (default: 10s)
	FetchTimeout time.Duration `env:"SOURCE_FETCH_TIMEOUT" default:"10s"`

	// MaxFetches caps concurrent record fetches (default: 2)
	MaxFetches int `env:"SOURCE_MAX_FETCHES" default:"2"`

	// FetchWait is how long a fetch waits for a free slot (default: 5s)
	FetchWait time.Duration `env:"SOURCE_FETCH_WAIT" default:"5s"`

	// Watch reloads records when the file source changes on disk (default: false)
	Watch bool `env:"SOURCE_WATCH" default:"false"`

	// RefreshCron is a cron expression for scheduled reloads, e.g. "*/5 * * * *"
	RefreshCron string `env:"SOURCE_REFRESH_CRON"`
}

// CacheConfig holds the shared record snapshot cache settings.
type CacheConfig struct {
	// RedisURL enables the cache, e.g. redis://localhost:6379/0
	RedisURL string `env:"REDIS_URL"`

	// TTL is how long a cached snapshot is served (default: 1m)
	TTL time.Duration `env:"CACHE_TTL" default:"1m"`

	// Key is the redis key holding the snapshot (default: tokengrid:records)
	Key string `env:"CACHE_KEY" default:"tokengrid:records"`
}

// GridConfig holds table layout settings.
type GridConfig struct {
	// LayoutPath is a TOML layout file; empty uses the built-in token layout.
	LayoutPath string `env:"GRID_LAYOUT"`

	// SecretField is the record field shown in the token modal (default: token)
	SecretField string `env:"GRID_SECRET_FIELD" default:"token"`
}

// SessionConfig holds per-browser table state settings.
type SessionConfig struct {
	// TTL is how long an idle table session is kept (default: 30m)
	TTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// CleanupInterval is how often idle sessions are evicted (default: 1m)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" default:"1m"`

	// CookieName names the session cookie (default: grid_session)
	CookieName string `env:"SESSION_COOKIE" default:"grid_session"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// SecureCookies marks the session cookie Secure (default: false)
	SecureCookies bool `env:"SECURITY_SECURE_COOKIES" default:"false"`

	// RequireAPIKey guards the JSON API with X-API-Key (default: false)
	RequireAPIKey bool `env:"SECURITY_REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"SECURITY_API_KEYS"`

	// TrustedProxies lists CIDRs whose X-Real-IP/X-Forwarded-For headers are honored
	TrustedProxies []string `env:"SECURITY_TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
