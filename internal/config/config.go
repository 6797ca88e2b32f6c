// Package config loads application configuration from environment variables.
// Every field has a default except where marked required, and Validate
// reports all problems at once so misconfiguration fails fast on startup.
package config

import (
	"net"
	"strconv"
	"time"
	"unicode/utf8"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Parse    ParseConfig
	Source   SourceConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MetricsEnabled serves Prometheus metrics on /metrics (default: true)
	MetricsEnabled bool `env:"METRICS_ENABLED" default:"true"`
}

// DatabaseConfig holds optional Postgres settings. Import runs are only
// persisted when URL is set.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ImportConfig holds HTTP import settings.
type ImportConfig struct {
	// MaxFileSize is the largest accepted request body in bytes (default: 50MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of imports parsed at once (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for an import slot (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single import including persistence (default: 2m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`

	// RetainRuns is how many finished runs are kept in memory (default: 50)
	RetainRuns int `env:"IMPORT_RETAIN_RUNS" default:"50"`
}

// ParseConfig controls how input lines become records.
type ParseConfig struct {
	// Policy is "abort" (stop at the first bad line) or "collect"
	Policy string `env:"PARSE_POLICY" default:"abort"`

	// Workers > 1 enables sharded parsing (default: 1)
	Workers int `env:"PARSE_WORKERS" default:"1"`

	// ShardSize is the number of lines per shard (default: 2048)
	ShardSize int `env:"PARSE_SHARD_SIZE" default:"2048"`

	// Delimiter is the single-character field separator (default: ";")
	Delimiter string `env:"PARSE_DELIMITER" default:";"`

	// MaxLineSize is the longest accepted line in bytes (default: 1MB)
	MaxLineSize int `env:"PARSE_MAX_LINE_SIZE" default:"1048576"`
}

// DelimiterRune returns Delimiter as a rune. Validate guarantees it holds
// exactly one character.
func (p ParseConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(p.Delimiter)
	return r
}

// SourceConfig holds CLI defaults.
type SourceConfig struct {
	// File is the CSV file read by the CLI when no --file flag is given
	File string `env:"PEOPLE_FILE" default:"foreign_names.csv"`

	// Top is how many records the CLI prints (default: 10)
	Top int `env:"PEOPLE_TOP" default:"10"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies lists CIDRs (or single IPs) whose X-Real-IP and
	// X-Forwarded-For headers are honoured. Empty means trust none.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
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
