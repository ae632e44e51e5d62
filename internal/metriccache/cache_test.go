package metriccache

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	return New(Config{Enabled: true, TTL: time.Hour, Dir: t.TempDir()}, testLogger())
}

func TestFingerprint_Deterministic(t *testing.T) {
	a, err := Fingerprint("points_per_race", map[string]any{"driver_id": 44, "season": 2023})
	require.NoError(t, err)

	b, err := Fingerprint("points_per_race", map[string]any{"driver_id": 44, "season": 2023})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, fingerprintLen)
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a, err := Fingerprint("dnf_rate", map[string]any{"driver_id": 44, "season": 2023, "race_ids": []int{1, 2}})
	require.NoError(t, err)

	b, err := Fingerprint("dnf_rate", map[string]any{"race_ids": []int{1, 2}, "season": 2023, "driver_id": 44})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFingerprint_ValueSensitive(t *testing.T) {
	base, err := Fingerprint("dnf_rate", map[string]any{"driver_id": 44})
	require.NoError(t, err)

	otherDriver, err := Fingerprint("dnf_rate", map[string]any{"driver_id": 63})
	require.NoError(t, err)

	otherMetric, err := Fingerprint("podium_rate", map[string]any{"driver_id": 44})
	require.NoError(t, err)

	assert.NotEqual(t, base, otherDriver)
	assert.NotEqual(t, base, otherMetric)
}

func TestFingerprint_NilMeansAbsentButNotDefault(t *testing.T) {
	absent, err := Fingerprint("dnf_rate", map[string]any{"driver_id": 44})
	require.NoError(t, err)

	explicitNil, err := Fingerprint("dnf_rate", map[string]any{"driver_id": 44, "season": nil})
	require.NoError(t, err)

	withSeason, err := Fingerprint("dnf_rate", map[string]any{"driver_id": 44, "season": 2023})
	require.NoError(t, err)

	// "All seasons" is the same request whether season is omitted or nil,
	// and must never collide with an explicit season.
	assert.Equal(t, absent, explicitNil)
	assert.NotEqual(t, absent, withSeason)
}

func TestCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	params := map[string]any{"driver_id": 44}

	_, ok := c.Get("dnf_rate", params)
	require.False(t, ok)

	c.Set("dnf_rate", params, json.RawMessage(`{"value":0.25}`))

	got, ok := c.Get("dnf_rate", params)
	require.True(t, ok)
	assert.JSONEq(t, `{"value":0.25}`, string(got))
}

func TestCache_ExpiredEntryDeletedOnRead(t *testing.T) {
	c := newTestCache(t)
	params := map[string]any{"driver_id": 44}

	c.Set("dnf_rate", params, json.RawMessage(`{"value":0.25}`))

	// Advance the clock past the TTL.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, ok := c.Get("dnf_rate", params)
	assert.False(t, ok)

	entries, err := filepath.Glob(filepath.Join(c.config.Dir, "*.json"))
	require.NoError(t, err)
	assert.Empty(t, entries, "expired entry should be removed at read time")
}

func TestCache_CorruptedEntryDegradesToMiss(t *testing.T) {
	c := newTestCache(t)
	params := map[string]any{"driver_id": 44}

	c.Set("dnf_rate", params, json.RawMessage(`{"value":0.25}`))

	fp, err := Fingerprint("dnf_rate", params)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.entryPath(fp), []byte("{not json"), 0o644))

	_, ok := c.Get("dnf_rate", params)
	assert.False(t, ok)
}

func TestCache_SetOverwrites(t *testing.T) {
	c := newTestCache(t)
	params := map[string]any{"driver_id": 44}

	c.Set("dnf_rate", params, json.RawMessage(`{"value":0.25}`))
	c.Set("dnf_rate", params, json.RawMessage(`{"value":0.5}`))

	got, ok := c.Get("dnf_rate", params)
	require.True(t, ok)
	assert.JSONEq(t, `{"value":0.5}`, string(got))
}

func TestCache_ClearAll(t *testing.T) {
	c := newTestCache(t)

	c.Set("dnf_rate", map[string]any{"driver_id": 44}, json.RawMessage(`1`))
	c.Set("podium_rate", map[string]any{"driver_id": 44}, json.RawMessage(`2`))

	removed, err := c.Clear("")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := c.Get("dnf_rate", map[string]any{"driver_id": 44})
	assert.False(t, ok)
}

func TestCache_ClearByMetric(t *testing.T) {
	c := newTestCache(t)

	c.Set("dnf_rate", map[string]any{"driver_id": 44}, json.RawMessage(`1`))
	c.Set("dnf_rate", map[string]any{"driver_id": 63}, json.RawMessage(`2`))
	c.Set("podium_rate", map[string]any{"driver_id": 44}, json.RawMessage(`3`))

	removed, err := c.Clear("dnf_rate")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := c.Get("podium_rate", map[string]any{"driver_id": 44})
	assert.True(t, ok, "entries for other metrics survive a selective clear")
}

func TestCache_Stats(t *testing.T) {
	c := newTestCache(t)

	c.Set("dnf_rate", map[string]any{"driver_id": 44}, json.RawMessage(`1`))
	c.Set("podium_rate", map[string]any{"driver_id": 44}, json.RawMessage(`2`))

	stats := c.Stats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 0, stats.ExpiredEntries)
	assert.Positive(t, stats.TotalBytes)
	assert.Equal(t, time.Hour.Seconds(), stats.TTLSeconds)

	// Expired entries are reported but left in place.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	stats = c.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 2, stats.ExpiredEntries)
}

func TestCache_DisabledIsInert(t *testing.T) {
	c := New(Config{Enabled: false, TTL: time.Hour, Dir: t.TempDir()}, testLogger())
	params := map[string]any{"driver_id": 44}

	c.Set("dnf_rate", params, json.RawMessage(`1`))

	_, ok := c.Get("dnf_rate", params)
	assert.False(t, ok)

	removed, err := c.Clear("")
	require.NoError(t, err)
	assert.Zero(t, removed)

	stats := c.Stats()
	assert.False(t, stats.Enabled)
	assert.Zero(t, stats.TotalEntries)
}
