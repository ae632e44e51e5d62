package metriccache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type (
	// Cache is a file-per-entry TTL cache for computed metric results.
	// Entries are addressable by fingerprint alone; the stored metric name
	// exists only for selective clearing. Concurrent readers and writers
	// to different fingerprints need no coordination; writers to the same
	// fingerprint race harmlessly because entries are reproducible derived
	// values and the rename makes each write atomic.
	Cache struct {
		config Config
		logger *slog.Logger

		now func() time.Time
	}

	// entry is the on-disk cache record.
	entry struct {
		MetricName string          `json:"metric_name"`
		Params     map[string]any  `json:"params"`
		Result     json.RawMessage `json:"result"`
		CachedAt   time.Time       `json:"cached_at"`
	}

	// Stats describes the cache's configuration and current disk footprint.
	Stats struct {
		Enabled        bool    `json:"enabled"`
		TTLSeconds     float64 `json:"ttl_seconds"`
		Directory      string  `json:"directory"`
		TotalEntries   int     `json:"total_entries"`
		ExpiredEntries int     `json:"expired_entries"`
		TotalBytes     int64   `json:"total_bytes"`
	}
)

// New creates a cache rooted at cfg.Dir, creating the directory if needed.
// A directory that cannot be created disables the cache rather than failing
// startup; the cache is an accelerator, not a dependency.
func New(cfg Config, logger *slog.Logger) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	if cfg.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			logger.Warn("Cache directory unavailable, disabling cache", "dir", cfg.Dir, "error", err)

			cfg.Enabled = false
		}
	}

	return &Cache{
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether the cache is active.
func (c *Cache) Enabled() bool {
	return c.config.Enabled
}

// Get returns the cached result for a metric invocation, or (nil, false) on
// any miss: absent entry, expired entry (which is deleted on the spot),
// corrupted entry, or I/O fault. Faults are logged and swallowed; a broken
// cache must never block the computation it fronts.
func (c *Cache) Get(metric string, params map[string]any) (json.RawMessage, bool) {
	if !c.config.Enabled {
		return nil, false
	}

	fp, err := Fingerprint(metric, params)
	if err != nil {
		c.logger.Warn("Cache read skipped", "metric", metric, "error", err)

		return nil, false
	}

	path := c.entryPath(fp)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("Cache read failed", "metric", metric, "fingerprint", fp, "error", err)
		}

		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Corrupted cache entry dropped", "metric", metric, "fingerprint", fp, "error", err)
		c.remove(path)

		return nil, false
	}

	if c.now().Sub(e.CachedAt) > c.config.TTL {
		c.remove(path)

		return nil, false
	}

	return e.Result, true
}

// Set stores a computed result under the invocation's fingerprint,
// overwriting any existing entry. Failures are logged and swallowed; the
// caller already holds the freshly computed result.
func (c *Cache) Set(metric string, params map[string]any, result json.RawMessage) {
	if !c.config.Enabled {
		return
	}

	fp, err := Fingerprint(metric, params)
	if err != nil {
		c.logger.Warn("Cache write skipped", "metric", metric, "error", err)

		return
	}

	data, err := json.Marshal(entry{
		MetricName: metric,
		Params:     params,
		Result:     result,
		CachedAt:   c.now(),
	})
	if err != nil {
		c.logger.Warn("Cache write skipped", "metric", metric, "fingerprint", fp, "error", err)

		return
	}

	// Write-then-rename keeps readers from ever observing a partial entry.
	tmp := filepath.Join(c.config.Dir, fmt.Sprintf(".%s.%s.tmp", fp, uuid.NewString()))

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		c.logger.Warn("Cache write failed", "metric", metric, "fingerprint", fp, "error", err)

		return
	}

	if err := os.Rename(tmp, c.entryPath(fp)); err != nil {
		c.logger.Warn("Cache write failed", "metric", metric, "fingerprint", fp, "error", err)
		c.remove(tmp)
	}
}

// Clear deletes cache entries. With an empty metric it removes everything;
// otherwise it re-reads each entry's stored metric name and removes only
// matches, which makes selective clearing O(n) in stored entries. It returns
// the number of entries removed.
func (c *Cache) Clear(metric string) (int, error) {
	if !c.config.Enabled {
		return 0, nil
	}

	paths, err := filepath.Glob(filepath.Join(c.config.Dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("list cache entries: %w", err)
	}

	removed := 0

	for _, path := range paths {
		if metric != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				c.logger.Warn("Cache entry unreadable during clear", "path", path, "error", err)

				continue
			}

			var e entry
			if err := json.Unmarshal(data, &e); err != nil {
				// Unparseable entries are garbage either way.
				c.remove(path)
				removed++

				continue
			}

			if e.MetricName != metric {
				continue
			}
		}

		if err := os.Remove(path); err != nil {
			c.logger.Warn("Cache entry removal failed", "path", path, "error", err)

			continue
		}

		removed++
	}

	c.logger.Info("Cache cleared", "metric", metric, "removed", removed)

	return removed, nil
}

// Stats reports the cache configuration and its current disk footprint.
// Expired entries are counted but not deleted here; expiry stays lazy.
func (c *Cache) Stats() Stats {
	stats := Stats{
		Enabled:    c.config.Enabled,
		TTLSeconds: c.config.TTL.Seconds(),
		Directory:  c.config.Dir,
	}

	if !c.config.Enabled {
		return stats
	}

	paths, err := filepath.Glob(filepath.Join(c.config.Dir, "*.json"))
	if err != nil {
		c.logger.Warn("Cache stats listing failed", "error", err)

		return stats
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		stats.TotalEntries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var e entry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}

		if c.now().Sub(e.CachedAt) > c.config.TTL {
			stats.ExpiredEntries++
		}
	}

	return stats
}

func (c *Cache) entryPath(fingerprint string) string {
	return filepath.Join(c.config.Dir, fingerprint+".json")
}

func (c *Cache) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("Cache entry removal failed", "path", path, "error", err)
	}
}
