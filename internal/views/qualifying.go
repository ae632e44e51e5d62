package views

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
)

// Qualifying returns qualifying rows joined with race context. Constructor
// scoping uses the table's own constructorId column when present and falls
// back to the season lineup derived from results otherwise.
func (b *Builder) Qualifying(ctx context.Context, f Filter) ([]QualifyingResult, error) {
	races, err := b.raceIndex(ctx, f)
	if err != nil {
		return nil, err
	}

	t, err := b.load(ctx, "qualifying", dataset.TableQualifying)
	if err != nil {
		return nil, err
	}

	var lineup map[int]int

	if !t.HasColumn("constructorId") {
		lineup, err = b.driverConstructors(ctx, races)
		if err != nil {
			return nil, err
		}
	}

	out := make([]QualifyingResult, 0, t.Len())

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

		constructorID, ok := row.Int("constructorId")
		if !ok {
			constructorID = lineup[driverID]
		}

		if f.ConstructorID != nil && constructorID != *f.ConstructorID {
			continue
		}

		out = append(out, QualifyingResult{
			RaceID:        raceID,
			Year:          race.Year,
			Round:         race.Round,
			DriverID:      driverID,
			ConstructorID: constructorID,
			Position:      intCell(row, "position"),
		})
	}

	sortByRace(out, func(r QualifyingResult) (int, int) { return r.Year, r.Round })

	return out, nil
}
