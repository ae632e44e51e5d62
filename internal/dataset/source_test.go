package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDatasetFile(t *testing.T, dir, filename, content string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644)
	require.NoError(t, err)
}

func TestCSVSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "races.csv",
		"raceId,year,round,name\n"+
			"1,2021,1,Bahrain Grand Prix\n"+
			"2,2021,2,Emilia Romagna Grand Prix\n")

	source := NewCSVSource(dir, nil)

	table, err := source.Load(context.Background(), TableRaces)
	require.NoError(t, err)

	assert.Equal(t, TableRaces, table.Name)
	assert.Equal(t, []string{"raceId", "year", "round", "name"}, table.Columns)
	require.Equal(t, 2, table.Len())

	year, ok := table.Row(0).Int("year")
	require.True(t, ok)
	assert.Equal(t, 2021, year)
	assert.Equal(t, "Emilia Romagna Grand Prix", table.Row(1).Text("name"))
}

func TestCSVSource_MissingFile(t *testing.T) {
	source := NewCSVSource(t.TempDir(), nil)

	_, err := source.Load(context.Background(), TableResults)

	require.ErrorIs(t, err, ErrTableNotFound)
	assert.Contains(t, err.Error(), "results")
}

func TestCSVSource_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "status.csv", "")

	source := NewCSVSource(dir, nil)

	_, err := source.Load(context.Background(), TableStatus)
	require.ErrorIs(t, err, ErrMalformedTable)
}

func TestCSVSource_RaggedRow(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "drivers.csv",
		"driverId,forename,surname\n"+
			"1,Lewis\n")

	source := NewCSVSource(dir, nil)

	_, err := source.Load(context.Background(), TableDrivers)
	require.ErrorIs(t, err, ErrMalformedTable)
}

func TestCSVSource_ManifestOverride(t *testing.T) {
	dir := t.TempDir()
	writeDatasetFile(t, dir, "lapTimes.csv",
		"raceId,driverId,lap,milliseconds\n"+
			"1,44,1,93456\n")

	manifest := &Manifest{Tables: map[string]string{TableLapTimes: "lapTimes.csv"}}
	source := NewCSVSource(dir, manifest)

	table, err := source.Load(context.Background(), TableLapTimes)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestCSVSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := NewCSVSource(t.TempDir(), nil)

	_, err := source.Load(ctx, TableRaces)
	require.ErrorIs(t, err, context.Canceled)
}
