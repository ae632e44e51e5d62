package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	manifestPath := filepath.Join(tmpDir, "gridstats.yaml")

	content := `
tables:
  lap_times: lapTimes.csv
  pit_stops: pitStops.csv
`
	err := os.WriteFile(manifestPath, []byte(content), 0o644)
	require.NoError(t, err)

	m, err := LoadManifest(manifestPath)

	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "lapTimes.csv", m.FileFor(TableLapTimes))
	assert.Equal(t, "pitStops.csv", m.FileFor(TablePitStops))
	assert.Equal(t, "races.csv", m.FileFor(TableRaces))
}

func TestLoadManifest_MissingFile(t *testing.T) {
	m, err := LoadManifest("/nonexistent/path/gridstats.yaml")

	// Missing file should return empty manifest, no error (graceful degradation)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "results.csv", m.FileFor(TableResults))
}

func TestLoadManifest_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	manifestPath := filepath.Join(tmpDir, "gridstats.yaml")

	err := os.WriteFile(manifestPath, []byte("tables: [not, a, mapping"), 0o644)
	require.NoError(t, err)

	m, err := LoadManifest(manifestPath)

	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "drivers.csv", m.FileFor(TableDrivers))
}

func TestLoadManifest_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	manifestPath := filepath.Join(tmpDir, "gridstats.yaml")

	err := os.WriteFile(manifestPath, nil, 0o644)
	require.NoError(t, err)

	m, err := LoadManifest(manifestPath)

	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "status.csv", m.FileFor(TableStatus))
}

func TestManifest_FileForNil(t *testing.T) {
	var m *Manifest

	assert.Equal(t, "races.csv", m.FileFor(TableRaces))
}
