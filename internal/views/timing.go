package views

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
)

// LapTimes returns lap rows joined with race context. The lap_times table has
// no constructor column, so constructor scoping goes through the season
// lineup derived from results.
func (b *Builder) LapTimes(ctx context.Context, f Filter) ([]LapTime, error) {
	races, err := b.raceIndex(ctx, f)
	if err != nil {
		return nil, err
	}

	t, err := b.load(ctx, "lap_times", dataset.TableLapTimes)
	if err != nil {
		return nil, err
	}

	lineup, err := b.driverConstructors(ctx, races)
	if err != nil {
		return nil, err
	}

	out := make([]LapTime, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		raceID, ok := row.Int("raceId")
		if !ok {
			continue
		}

		race, ok := races[raceID]
		if !ok {
			continue
		}

		driverID, _ := row.Int("driverId")
		if f.DriverID != nil && driverID != *f.DriverID {
			continue
		}

		constructorID := lineup[driverID]
		if f.ConstructorID != nil && constructorID != *f.ConstructorID {
			continue
		}

		out = append(out, LapTime{
			RaceID:        raceID,
			Year:          race.Year,
			Round:         race.Round,
			DriverID:      driverID,
			ConstructorID: constructorID,
			Lap:           intOr(row, "lap", 0),
			Milliseconds:  intCell(row, "milliseconds"),
		})
	}

	sortByRace(out, func(r LapTime) (int, int) { return r.Year, r.Round })

	return out, nil
}

// PitStops returns pit stop rows joined with race context, with constructor
// scoping through the season lineup.
func (b *Builder) PitStops(ctx context.Context, f Filter) ([]PitStop, error) {
	races, err := b.raceIndex(ctx, f)
	if err != nil {
		return nil, err
	}

	t, err := b.load(ctx, "pit_stops", dataset.TablePitStops)
	if err != nil {
		return nil, err
	}

	lineup, err := b.driverConstructors(ctx, races)
	if err != nil {
		return nil, err
	}

	out := make([]PitStop, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		raceID, ok := row.Int("raceId")
		if !ok {
			continue
		}

		race, ok := races[raceID]
		if !ok {
			continue
		}

		driverID, _ := row.Int("driverId")
		if f.DriverID != nil && driverID != *f.DriverID {
			continue
		}

		constructorID := lineup[driverID]
		if f.ConstructorID != nil && constructorID != *f.ConstructorID {
			continue
		}

		out = append(out, PitStop{
			RaceID:        raceID,
			Year:          race.Year,
			Round:         race.Round,
			DriverID:      driverID,
			ConstructorID: constructorID,
			Stop:          intCell(row, "stop"),
			Lap:           intCell(row, "lap"),
			Milliseconds:  intCell(row, "milliseconds"),
		})
	}

	sortByRace(out, func(r PitStop) (int, int) { return r.Year, r.Round })

	return out, nil
}
