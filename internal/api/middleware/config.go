// Package middleware provides HTTP middleware components for the gridstats API.
package middleware

import (
	"time"

	"github.com/gridstats-io/gridstats/internal/config"
)

// Config holds rate limiter configuration.
//
// Rate limits specify requests per second (RPS) for two tiers:
//   - Global: Applied to all requests
//   - Per-client: Applied per client IP
//
// Burst capacity allows temporary bursts above the sustained rate.
// If burst fields are 0, they are computed automatically as 2 × rate.
type Config struct {
	// Rate limits (requests per second)
	GlobalRPS int // Default: 100
	ClientRPS int // Default: 20

	// Optional burst capacity overrides (0 = computed as 2 × rate)
	GlobalBurst int
	ClientBurst int

	// Memory cleanup configuration
	CleanupInterval time.Duration // Default: 5 minutes
	IdleTimeout     time.Duration // Default: 1 hour
	MaxClients      int           // Default: 10,000
}

// LoadConfig loads middleware config from environment variables with fallback to defaults.
//
// Environment variables:
//   - GRIDSTATS_GLOBAL_RPS: global request rate (default: 100)
//   - GRIDSTATS_CLIENT_RPS: per-client request rate (default: 20)
//   - GRIDSTATS_GLOBAL_BURST, GRIDSTATS_CLIENT_BURST: burst overrides
//   - GRIDSTATS_RATE_LIMIT_CLEANUP_INTERVAL, GRIDSTATS_RATE_LIMIT_IDLE_TIMEOUT
//   - GRIDSTATS_RATE_LIMIT_MAX_CLIENTS: client limiter cap (default: 10000)
func LoadConfig() *Config {
	return &Config{
		GlobalRPS: config.GetEnvInt("GRIDSTATS_GLOBAL_RPS", defaultGlobalRPS),
		ClientRPS: config.GetEnvInt("GRIDSTATS_CLIENT_RPS", defaultClientRPS),

		GlobalBurst: config.GetEnvInt("GRIDSTATS_GLOBAL_BURST", 0),
		ClientBurst: config.GetEnvInt("GRIDSTATS_CLIENT_BURST", 0),

		CleanupInterval: config.GetEnvDuration(
			"GRIDSTATS_RATE_LIMIT_CLEANUP_INTERVAL", rateLimiterCleanupInterval,
		),
		IdleTimeout: config.GetEnvDuration("GRIDSTATS_RATE_LIMIT_IDLE_TIMEOUT", rateLimiterIdleTimeout),
		MaxClients:  config.GetEnvInt("GRIDSTATS_RATE_LIMIT_MAX_CLIENTS", maxClients),
	}
}
