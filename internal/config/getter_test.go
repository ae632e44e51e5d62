package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvStr(t *testing.T) {
	t.Setenv("GRIDSTATS_TEST_STR", "dataset")

	assert.Equal(t, "dataset", GetEnvStr("GRIDSTATS_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnvStr("GRIDSTATS_TEST_STR_MISSING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("GRIDSTATS_TEST_INT", "9090")
	t.Setenv("GRIDSTATS_TEST_INT_BAD", "not-a-number")

	assert.Equal(t, 9090, GetEnvInt("GRIDSTATS_TEST_INT", 8080))
	assert.Equal(t, 8080, GetEnvInt("GRIDSTATS_TEST_INT_BAD", 8080))
	assert.Equal(t, 8080, GetEnvInt("GRIDSTATS_TEST_INT_MISSING", 8080))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback bool
		want     bool
	}{
		{"true literal", "true", false, true},
		{"numeric true", "1", false, true},
		{"yes", "YES", false, true},
		{"false literal", "false", true, false},
		{"numeric false", "0", true, false},
		{"no", "No", true, false},
		{"garbage falls back", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GRIDSTATS_TEST_BOOL", tt.value)

			assert.Equal(t, tt.want, GetEnvBool("GRIDSTATS_TEST_BOOL", tt.fallback))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("GRIDSTATS_TEST_DURATION", "90s")
	t.Setenv("GRIDSTATS_TEST_DURATION_BAD", "ninety seconds")

	assert.Equal(t, 90*time.Second, GetEnvDuration("GRIDSTATS_TEST_DURATION", time.Hour))
	assert.Equal(t, time.Hour, GetEnvDuration("GRIDSTATS_TEST_DURATION_BAD", time.Hour))
}

func TestGetEnvLogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("GRIDSTATS_TEST_LOG_LEVEL", tt.value)

			assert.Equal(t, tt.want, GetEnvLogLevel("GRIDSTATS_TEST_LOG_LEVEL", slog.LevelInfo))
		})
	}
}

func TestParseCommaSeparatedList(t *testing.T) {
	assert.Equal(t, []string{"GET", "POST"}, ParseCommaSeparatedList("GET, POST"))
	assert.Equal(t, []string{"*"}, ParseCommaSeparatedList("*"))
	assert.Empty(t, ParseCommaSeparatedList(""))
	assert.Equal(t, []string{"a"}, ParseCommaSeparatedList(",a,,"))
}
