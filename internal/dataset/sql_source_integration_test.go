package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/gridstats-io/gridstats/internal/config"
)

// setupSQLSource starts a PostgreSQL container with the dataset schema and
// seeds a minimal slice of the 2021 season.
func setupSQLSource(ctx context.Context, t *testing.T) *SQLSource {
	t.Helper()

	testDB := config.SetupTestDatabase(ctx, t)
	t.Cleanup(func() {
		_ = testDB.Connection.Close()
		_ = testcontainers.TerminateContainer(testDB.Container)
	})

	seed := []string{
		`INSERT INTO races ("raceId", year, round, "circuitId", name, date) VALUES
			(1, 2021, 1, 3, 'Bahrain Grand Prix', '2021-03-28'),
			(2, 2021, 2, 21, 'Emilia Romagna Grand Prix', '2021-04-18')`,
		`INSERT INTO results ("resultId", "raceId", "driverId", "constructorId", grid, position, "positionText", "positionOrder", points, laps, "statusId") VALUES
			(1, 1, 44, 131, 2, 1, '1', 1, 25, 56, 1),
			(2, 1, 33, 9, 1, 2, '2', 2, 18, 56, 1),
			(3, 2, 44, 131, 1, NULL, 'R', 19, 0, 30, 4)`,
		`INSERT INTO status ("statusId", status) VALUES (1, 'Finished'), (4, 'Collision')`,
	}

	for _, stmt := range seed {
		_, err := testDB.Connection.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	connStr, err := testDB.Container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := NewConnection(NewSQLConfig(connStr))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return NewSQLSource(conn)
}

func TestSQLSource_Load(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	source := setupSQLSource(ctx, t)

	table, err := source.Load(ctx, TableResults)
	require.NoError(t, err)

	assert.Equal(t, TableResults, table.Name)
	require.Equal(t, 3, table.Len())

	// SQL NULLs must coerce exactly like the CSV export's NULL literal.
	var dnfSeen bool

	for i := range table.Len() {
		row := table.Row(i)
		if _, ok := row.Int("position"); !ok {
			dnfSeen = true

			points, pointsOK := row.Float("points")
			require.True(t, pointsOK)
			assert.InDelta(t, 0.0, points, 0.001)
		}
	}

	assert.True(t, dnfSeen, "expected the NULL-position row to coerce as a DNF")
}

func TestSQLSource_UnknownTable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	source := setupSQLSource(ctx, t)

	_, err := source.Load(ctx, "sprint_results")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestSQLSource_StoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	source := setupSQLSource(ctx, t)
	store := NewStore(source, testLogger())

	races, err := store.Load(ctx, TableRaces)
	require.NoError(t, err)
	assert.Equal(t, 2, races.Len())

	again, err := store.Load(ctx, TableRaces)
	require.NoError(t, err)
	assert.Same(t, races, again)
}
