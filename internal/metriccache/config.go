package metriccache

import (
	"time"

	"github.com/gridstats-io/gridstats/internal/config"
)

// Defaults for the cache layer.
const (
	DefaultTTL = time.Hour
	DefaultDir = "cache"
)

// Config holds the metric cache settings.
type Config struct {
	// Enabled toggles the cache entirely; when false every read is a miss
	// and every write is a no-op.
	Enabled bool
	// TTL is the maximum entry age before lazy expiry at read time.
	TTL time.Duration
	// Dir is the directory holding one file per cache entry.
	Dir string
}

// LoadConfig reads cache settings from the environment.
//
// Environment variables:
//   - GRIDSTATS_CACHE_ENABLED: enable the metric cache (default: true)
//   - GRIDSTATS_CACHE_TTL: entry time-to-live (default: 1h)
//   - GRIDSTATS_CACHE_DIR: entry directory (default: "cache")
func LoadConfig() Config {
	return Config{
		Enabled: config.GetEnvBool("GRIDSTATS_CACHE_ENABLED", true),
		TTL:     config.GetEnvDuration("GRIDSTATS_CACHE_TTL", DefaultTTL),
		Dir:     config.GetEnvStr("GRIDSTATS_CACHE_DIR", DefaultDir),
	}
}
