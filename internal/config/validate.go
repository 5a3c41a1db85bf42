package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/kinship"
)

// validate reports every problem with c at once.
func (c *Config) validate() error {
	errs := []error{c.validateStorage(), c.validatePorts(), c.validateListenHost()}

	for _, origin := range c.CORSOrigins {
		errs = append(errs, validateOrigin(origin))
	}

	if _, err := kinship.ParseStyle(c.LabelStyle); err != nil {
		errs = append(errs, fmt.Errorf("LABEL_STYLE: %w", err))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL is not a valid level: %w", err))
	}

	return errors.Join(errs...)
}

func (c *Config) validateStorage() error {
	switch c.StorageEngine {
	case EnginePostgres:
		return validateDatabaseURL(c.DatabaseURL.Value())
	case EngineSQLite:
		path := strings.TrimSpace(c.SQLitePath)
		if path != ":memory:" && filepath.Ext(path) == "" {
			return fmt.Errorf("SQLITE_PATH must name a database file, got %q", c.SQLitePath)
		}

		return nil
	default:
		return fmt.Errorf("STORAGE_ENGINE must be %q or %q, got %q", EnginePostgres, EngineSQLite, c.StorageEngine)
	}
}

// validateDatabaseURL requires a postgres URL with a host, and TLS unless the
// host is loopback.
func validateDatabaseURL(raw string) error {
	if raw == "" {
		return errors.New("DATABASE_URL is required when STORAGE_ENGINE is postgres")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	switch {
	case u.Scheme != "postgres" && u.Scheme != "postgresql":
		return errors.New("DATABASE_URL scheme must be postgres:// or postgresql://")
	case u.Hostname() == "":
		return errors.New("DATABASE_URL must include a host")
	case !isLoopback(u.Hostname()) && u.Query().Get("sslmode") == "disable":
		return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", u.Hostname())
	}

	return nil
}

func (c *Config) validatePorts() error {
	api, err := parsePort("PORT", c.Port)
	if err != nil {
		return err
	}

	metrics, err := parsePort("METRICS_PORT", c.MetricsPort)
	if err != nil {
		return err
	}

	if api == metrics {
		return errors.New("METRICS_PORT must differ from PORT")
	}

	return nil
}

func parsePort(key, value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}

	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%s must be between 1 and 65535", key)
	}

	return port, nil
}

// validateListenHost allows loopback, or the unspecified address for
// containers where the network boundary is enforced outside the process.
func (c *Config) validateListenHost() error {
	if isLoopback(c.ListenHost) {
		return nil
	}

	if ip := net.ParseIP(c.ListenHost); ip != nil && ip.IsUnspecified() {
		return nil
	}

	return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost)
}

func validateOrigin(origin string) error {
	if origin == "*" {
		return errors.New("CORS_ORIGINS must not contain wildcard '*'")
	}

	if strings.ContainsAny(origin, "*?[]") {
		return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
	}

	if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
	}

	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)

	return ip != nil && ip.IsLoopback()
}
