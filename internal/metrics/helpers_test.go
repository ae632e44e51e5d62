package metrics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/metriccache"
	"github.com/gridstats-io/gridstats/internal/views"
)

// mapSource serves pre-built tables from memory.
type mapSource struct {
	tables map[string]*dataset.RawTable
}

func (s *mapSource) Load(_ context.Context, name string) (*dataset.RawTable, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrTableNotFound, name)
	}

	return t, nil
}

func mustTable(t *testing.T, name string, columns []string, rows [][]string) *dataset.RawTable {
	t.Helper()

	table, err := dataset.NewRawTable(name, columns, rows)
	require.NoError(t, err)

	return table
}

// fixtureTables spans seasons 2022 and 2023 plus a below-floor 2009 race.
// Constructor 131 (Mercedes) runs drivers 44 and 63; constructor 9 (Red
// Bull) runs 33 and 11.
func fixtureTables(t *testing.T) map[string]*dataset.RawTable {
	t.Helper()

	return map[string]*dataset.RawTable{
		dataset.TableRaces: mustTable(t, dataset.TableRaces,
			[]string{"raceId", "year", "round", "circuitId", "name", "date"},
			[][]string{
				{"5", "2009", "1", "1", "Australian Grand Prix", "2009-03-29"},
				{"10", "2022", "1", "1", "Bahrain Grand Prix", "2022-03-20"},
				{"11", "2023", "1", "1", "Bahrain Grand Prix", "2023-03-05"},
				{"12", "2023", "2", "2", "Saudi Arabian Grand Prix", "2023-03-19"},
			}),
		dataset.TableResults: mustTable(t, dataset.TableResults,
			[]string{"resultId", "raceId", "driverId", "constructorId", "grid", "position", "positionText", "positionOrder", "points", "laps", "statusId"},
			[][]string{
				// 2022 round 1: Mercedes 1-2, Verstappen retires.
				{"1", "10", "44", "131", "2", "1", "1", "1", "25", "57", "1"},
				{"2", "10", "63", "131", "3", "2", "2", "2", "18", "57", "1"},
				{"3", "10", "33", "9", "1", `\N`, "R", "19", "0", "12", "5"},
				{"4", "10", "11", "9", "4", "3", "3", "3", "15", "57", "1"},
				// 2023 round 1: Russell retires.
				{"5", "11", "44", "131", "3", "1", "1", "1", "25", "57", "1"},
				{"6", "11", "63", "131", "5", `\N`, "R", "18", "0", "40", "4"},
				{"7", "11", "33", "9", "1", "2", "2", "2", "18", "57", "1"},
				{"8", "11", "11", "9", "2", "3", "3", "3", "15", "57", "1"},
				// 2023 round 2.
				{"9", "12", "44", "131", "1", "1", "1", "1", "26", "50", "1"},
				{"10", "12", "63", "131", "2", "2", "2", "2", "18", "50", "1"},
				{"11", "12", "33", "9", "3", "4", "4", "4", "12", "50", "1"},
				{"12", "12", "11", "9", "4", "3", "3", "3", "15", "50", "1"},
				// Below the floor.
				{"13", "5", "44", "131", "1", "1", "1", "1", "10", "58", "1"},
			}),
		dataset.TableQualifying: mustTable(t, dataset.TableQualifying,
			[]string{"qualifyId", "raceId", "driverId", "constructorId", "position"},
			[][]string{
				{"1", "10", "44", "131", "2"},
				{"2", "10", "63", "131", "4"},
				{"3", "10", "33", "9", "1"},
				{"4", "10", "11", "9", "3"},
				{"5", "11", "44", "131", "3"},
				{"6", "11", "63", "131", `\N`},
				{"7", "11", "33", "9", "1"},
				{"8", "11", "11", "9", "2"},
				{"9", "12", "44", "131", "1"},
				{"10", "12", "63", "131", "2"},
				{"11", "12", "33", "9", "3"},
				{"12", "12", "11", "9", "4"},
			}),
		dataset.TableLapTimes: mustTable(t, dataset.TableLapTimes,
			[]string{"raceId", "driverId", "lap", "position", "time", "milliseconds"},
			[][]string{
				{"10", "44", "1", "1", "1:31.044", "91044"},
				{"10", "44", "2", "1", "1:30.501", "90501"},
				{"10", "33", "1", "3", "1:32.100", "92100"},
			}),
		dataset.TablePitStops: mustTable(t, dataset.TablePitStops,
			[]string{"raceId", "driverId", "stop", "lap", "duration", "milliseconds"},
			[][]string{
				{"10", "44", "1", "14", "22.815", "22815"},
				{"11", "44", "1", "17", "23.500", "23500"},
				{"11", "44", "2", "35", "2.900", "2900"},
				{"10", "33", "1", "11", "24.001", "24001"},
			}),
		dataset.TableDrivers: mustTable(t, dataset.TableDrivers,
			[]string{"driverId", "driverRef", "forename", "surname"},
			[][]string{
				{"44", "hamilton", "Lewis", "Hamilton"},
				{"63", "russell", "George", "Russell"},
				{"33", "max_verstappen", "Max", "Verstappen"},
				{"11", "perez", "Sergio", "Pérez"},
			}),
		dataset.TableConstructors: mustTable(t, dataset.TableConstructors,
			[]string{"constructorId", "constructorRef", "name"},
			[][]string{
				{"131", "mercedes", "Mercedes"},
				{"9", "red_bull", "Red Bull"},
			}),
		dataset.TableConstructorStandings: mustTable(t, dataset.TableConstructorStandings,
			[]string{"constructorStandingsId", "raceId", "constructorId", "points", "position", "wins"},
			[][]string{
				{"1", "10", "131", "43", "1", "1"},
				{"2", "10", "9", "15", "2", "0"},
				{"3", "11", "131", "25", "1", "1"},
				{"4", "11", "9", "33", "2", "0"},
				{"5", "12", "131", "69", "1", "2"},
				{"6", "12", "9", "60", "2", "0"},
			}),
		dataset.TableStatus: mustTable(t, dataset.TableStatus,
			[]string{"statusId", "status"},
			[][]string{
				{"1", "Finished"},
				{"4", "Collision"},
				{"5", "Engine"},
			}),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBuilder(t *testing.T, tables map[string]*dataset.RawTable) *views.Builder {
	t.Helper()

	logger := testLogger()
	store := dataset.NewStore(&mapSource{tables: tables}, logger)

	return views.NewBuilder(store, views.Config{MinSeason: 2011}, logger)
}

func newTestService(t *testing.T, tables map[string]*dataset.RawTable) *Service {
	t.Helper()

	logger := testLogger()
	cache := metriccache.New(metriccache.Config{Enabled: true, TTL: time.Hour, Dir: t.TempDir()}, logger)

	return NewService(NewRegistry(), newTestBuilder(t, tables), cache, logger)
}

func intp(n int) *int { return &n }
