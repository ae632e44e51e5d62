package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gridstats-io/gridstats/internal/config"
)

var (
	// ErrMissingDatabaseURL indicates DATABASE_URL was not set.
	ErrMissingDatabaseURL = errors.New("DATABASE_URL cannot be empty")

	// ErrMissingMigrationTable indicates the tracking table name was empty.
	ErrMissingMigrationTable = errors.New("MIGRATION_TABLE cannot be empty")
)

// Config holds all configuration for the migration tool.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// MigrationTable is the name of the table used to track applied migrations.
	MigrationTable string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    config.GetEnvStr("DATABASE_URL", ""),
		MigrationTable: config.GetEnvStr("MIGRATION_TABLE", "schema_migrations"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}

	if c.MigrationTable == "" {
		return ErrMissingMigrationTable
	}

	return nil
}

// String returns a log-safe representation with credentials redacted.
func (c *Config) String() string {
	return fmt.Sprintf("Config{DatabaseURL: %s, MigrationTable: %s}",
		redactDatabaseURL(c.DatabaseURL), c.MigrationTable)
}

// redactDatabaseURL strips the password from a connection URL for logging.
// Unparseable URLs are replaced wholesale rather than risking a credential leak.
func redactDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}

	return u.Redacted()
}
