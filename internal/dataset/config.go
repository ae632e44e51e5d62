package dataset

import (
	"errors"
	"strings"
	"time"

	"github.com/gridstats-io/gridstats/internal/config"
)

const (
	// BackendCSV reads tables from a directory of CSV exports.
	BackendCSV = "csv"
	// BackendPostgres reads the same logical tables from a PostgreSQL database.
	BackendPostgres = "postgres"

	defaultDatasetDir = "dataset"

	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 10 * time.Minute
)

var (
	// ErrDatabaseURLEmpty is returned when the database url is an empty string.
	ErrDatabaseURLEmpty = errors.New("database URL cannot be empty")
	// ErrUnknownBackend is returned when the configured dataset backend is not recognized.
	ErrUnknownBackend = errors.New("unknown dataset backend")
)

type (
	// Config holds dataset source configuration.
	Config struct {
		// Backend selects the table source implementation: "csv" or "postgres".
		Backend string
		// Dir is the CSV dataset directory (csv backend only).
		Dir string
		// ManifestPath points at the optional filename-override manifest.
		ManifestPath string
	}

	// SQLConfig holds PostgreSQL connection configuration with production-ready defaults.
	SQLConfig struct {
		databaseURL     string
		MaxOpenConns    int           // Maximum number of open connections
		MaxIdleConns    int           // Maximum number of idle connections
		ConnMaxLifetime time.Duration // Maximum lifetime of connections
		ConnMaxIdleTime time.Duration // Maximum idle time for connections
	}
)

// LoadConfig loads dataset configuration from environment variables with fallback to defaults.
func LoadConfig() *Config {
	return &Config{
		Backend:      config.GetEnvStr("GRIDSTATS_DATASET_BACKEND", BackendCSV),
		Dir:          config.GetEnvStr("GRIDSTATS_DATASET_DIR", defaultDatasetDir),
		ManifestPath: config.GetEnvStr("GRIDSTATS_DATASET_MANIFEST", DefaultManifestPath),
	}
}

// Validate checks if the dataset configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCSV, BackendPostgres:
		return nil
	default:
		return ErrUnknownBackend
	}
}

// LoadSQLConfig loads PostgreSQL configuration from environment variables with fallback to defaults.
func LoadSQLConfig() *SQLConfig {
	return &SQLConfig{
		databaseURL:     config.GetEnvStr("DATABASE_URL", ""), // databaseURL is private for obvious reasons.
		MaxOpenConns:    config.GetEnvInt("DATABASE_MAX_OPEN_CONNS", defaultMaxOpenConns),
		MaxIdleConns:    config.GetEnvInt("DATABASE_MAX_IDLE_CONNS", defaultMaxIdleConns),
		ConnMaxLifetime: config.GetEnvDuration("DATABASE_CONN_MAX_LIFETIME", defaultConnMaxLifetime),
		ConnMaxIdleTime: config.GetEnvDuration("DATABASE_CONN_MAX_IDLE_TIME", defaultConnMaxIdleTime),
	}
}

// NewSQLConfig creates a SQLConfig for an explicit database URL with default
// pool settings. Primarily used by tests and the migrator.
func NewSQLConfig(databaseURL string) *SQLConfig {
	return &SQLConfig{
		databaseURL:     databaseURL,
		MaxOpenConns:    defaultMaxOpenConns,
		MaxIdleConns:    defaultMaxIdleConns,
		ConnMaxLifetime: defaultConnMaxLifetime,
		ConnMaxIdleTime: defaultConnMaxIdleTime,
	}
}

// Validate checks if the PostgreSQL configuration is valid.
func (c *SQLConfig) Validate() error {
	if strings.TrimSpace(c.databaseURL) == "" {
		return ErrDatabaseURLEmpty
	}

	return nil
}

// MaskDatabaseURL returns a masked databaseURL safe for logging.
func (c *SQLConfig) MaskDatabaseURL() string {
	if c.databaseURL == "" {
		return ""
	}

	schemeEnd := strings.Index(c.databaseURL, "://")
	if schemeEnd == -1 {
		return c.databaseURL
	}

	afterScheme := c.databaseURL[schemeEnd+3:]

	lastAtIndex := strings.LastIndex(afterScheme, "@")
	if lastAtIndex == -1 {
		// No @ found, no userinfo
		return c.databaseURL
	}

	userInfo := afterScheme[:lastAtIndex]

	colonIndex := strings.Index(userInfo, ":")
	if colonIndex == -1 {
		// No password
		return c.databaseURL
	}

	username := userInfo[:colonIndex]
	password := userInfo[colonIndex+1:]

	if password == "" {
		// Empty password, don't mask
		return c.databaseURL
	}

	scheme := c.databaseURL[:schemeEnd]
	hostAndRest := afterScheme[lastAtIndex:]

	return scheme + "://" + username + ":***" + hostAndRest
}
