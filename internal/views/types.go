// Package views composes the raw dataset tables into the derived, joined
// views that metric formulas consume. Every race-derived view applies the
// season floor before any join; callers cannot opt out of it.
package views

import (
	"errors"
	"fmt"
)

// ErrInconsistentStandings is returned when two standings rows claim the same
// round for one (season, constructor) group. Source data never does this, so
// it is surfaced as a data error instead of being silently resolved.
var ErrInconsistentStandings = errors.New("inconsistent standings: duplicate round for group")

type (
	// Filter scopes a derived view. Nil fields mean "unfiltered"; an
	// explicit RaceIDs list is intersected with the season-resolved race
	// set, never used to bypass it.
	Filter struct {
		DriverID      *int
		ConstructorID *int
		Season        *int
		RaceIDs       []int
	}

	// Race is one row of the season-floor-filtered races view.
	Race struct {
		ID      int
		Year    int
		Round   int
		Name    string
		Date    string
		Circuit int
	}

	// DriverResult is a race result row joined with race context and the
	// driver's display name. Position is nil for unclassified entries
	// (DNF); PositionOrder is always populated by the dataset and is the
	// classification used for averages over finishers.
	DriverResult struct {
		RaceID        int
		Year          int
		Round         int
		RaceName      string
		Date          string
		DriverID      int
		DriverName    string
		ConstructorID int
		Grid          *int
		Position      *int
		PositionOrder int
		Points        float64
		Laps          int
		StatusID      int
	}

	// ConstructorResult is a single-car result row joined with race and
	// constructor context.
	ConstructorResult struct {
		RaceID          int
		Year            int
		Round           int
		RaceName        string
		ConstructorID   int
		ConstructorName string
		DriverID        int
		Grid            *int
		Position        *int
		PositionOrder   int
		Points          float64
		StatusID        int
	}

	// ConstructorRaceGroup aggregates a constructor's cars within one race.
	// Best/Worst cover classified positions only and are nil when neither
	// car finished; DriversCount counts entries, Finishers counts
	// classified positions. Joint aggregation over both cars is what race
	// wins (1-2 finishes) and podium lockouts are defined on.
	ConstructorRaceGroup struct {
		RaceID        int
		ConstructorID int
		Year          int
		Round         int
		BestPosition  *int
		WorstPosition *int
		DriversCount  int
		Finishers     int
		PodiumCount   int
		TotalPoints   float64
	}

	// Standing is a constructor's final championship standing for a season:
	// the last standings row by round order, not a recomputed sum.
	Standing struct {
		Season        int
		Round         int
		ConstructorID int
		Points        float64
		Position      int
		Wins          int
	}

	// QualifyingResult is a qualifying row with race context. Position is
	// nil when the entry never set a time.
	QualifyingResult struct {
		RaceID        int
		Year          int
		Round         int
		DriverID      int
		ConstructorID int
		Position      *int
	}

	// LapTime is one lap with race context and the constructor resolved
	// through the season's driver lineup.
	LapTime struct {
		RaceID        int
		Year          int
		Round         int
		DriverID      int
		ConstructorID int
		Lap           int
		Milliseconds  *int
	}

	// PitStop is one pit stop with race context.
	PitStop struct {
		RaceID        int
		Year          int
		Round         int
		DriverID      int
		ConstructorID int
		Stop          *int
		Lap           *int
		Milliseconds  *int
	}

	// TeammatePair identifies a race where a constructor entered exactly
	// two drivers.
	TeammatePair struct {
		RaceID        int
		Year          int
		ConstructorID int
		Driver1ID     int
		Driver2ID     int
	}

	// ReliabilityRow is a constructor result joined with its status code
	// text for failure classification.
	ReliabilityRow struct {
		ConstructorResult

		Status string
	}

	// UnavailableError reports that a view cannot be built because a
	// required table is absent or unreadable. Callers treat it as a
	// definitive "no result"; it is never retried automatically.
	UnavailableError struct {
		View  string
		Table string
		Err   error
	}
)

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("view %q unavailable: table %q: %v", e.View, e.Table, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
