// Package config provides environment-driven configuration for the kinship server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Storage engines.
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// Config holds all application configuration values.
type Config struct {
	StorageEngine     string
	DatabaseURL       Secret
	SQLitePath        string
	DBMaxConns        int
	Port              string
	MetricsPort       string
	ListenHost        string
	CORSOrigins       []string
	LogLevel          string
	LabelStyle        string
	SnapshotCacheSize int
	SnapshotCacheTTL  time.Duration
	BatchWorkers      int
	MaxBatchPairs     int
	RateLimit         float64
	RateBurst         int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		StorageEngine: strings.ToLower(envOrDefault("STORAGE_ENGINE", EnginePostgres)),
		DatabaseURL:   Secret(envOrDefault("DATABASE_URL", "")),
		SQLitePath:    envOrDefault("SQLITE_PATH", "./data/kinship.db"),
		Port:          envOrDefault("PORT", "3040"),
		MetricsPort:   envOrDefault("METRICS_PORT", "9140"),
		ListenHost:    envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LabelStyle:    envOrDefault("LABEL_STYLE", "words"),
	}

	var err error

	if cfg.DBMaxConns, err = intInRange("DB_MAX_CONNS", 21, 2, 200); err != nil {
		return nil, err
	}

	if cfg.SnapshotCacheSize, err = intInRange("SNAPSHOT_CACHE_SIZE", 256, 1, 100000); err != nil {
		return nil, err
	}

	if cfg.BatchWorkers, err = intInRange("BATCH_WORKERS", 8, 1, 64); err != nil {
		return nil, err
	}

	if cfg.MaxBatchPairs, err = intInRange("MAX_BATCH_PAIRS", 1000, 1, 100000); err != nil {
		return nil, err
	}

	if cfg.RateBurst, err = intInRange("RATE_BURST", 200, 1, 100000); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(envOrDefault("SNAPSHOT_CACHE_TTL", "10m"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SNAPSHOT_CACHE_TTL must be a positive duration (e.g. 10m)")
	}
	cfg.SnapshotCacheTTL = ttl

	rateLimit, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT", "100"), 64)
	if err != nil || rateLimit <= 0 || rateLimit > 100000 {
		return nil, fmt.Errorf("RATE_LIMIT must be a number between 0 and 100000")
	}
	cfg.RateLimit = rateLimit

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the Prometheus listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func intInRange(key string, fallback, lo, hi int) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, strconv.Itoa(fallback)))
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}

	return v, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
