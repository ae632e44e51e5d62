package views

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gridstats-io/gridstats/internal/config"
	"github.com/gridstats-io/gridstats/internal/dataset"
)

// DefaultMinSeason is the earliest season any view will surface. Earlier
// seasons used different scoring and classification rules, so they are cut
// off at load time rather than left to individual formulas.
const DefaultMinSeason = 2011

type (
	// Config holds the view layer settings.
	Config struct {
		// MinSeason is the season floor applied to every race-derived view.
		MinSeason int
	}

	// Builder derives joined views from the table store. It is stateless
	// apart from configuration and safe for concurrent use; all caching
	// lives in the store underneath it.
	Builder struct {
		store  *dataset.Store
		logger *slog.Logger

		minSeason int
	}
)

// LoadConfig reads view settings from the environment.
//
// Environment variables:
//   - GRIDSTATS_MIN_SEASON: season floor for all views (default: 2011)
func LoadConfig() Config {
	return Config{
		MinSeason: config.GetEnvInt("GRIDSTATS_MIN_SEASON", DefaultMinSeason),
	}
}

// NewBuilder creates a view builder over the given table store.
func NewBuilder(store *dataset.Store, cfg Config, logger *slog.Logger) *Builder {
	if cfg.MinSeason <= 0 {
		cfg.MinSeason = DefaultMinSeason
	}

	return &Builder{
		store:     store,
		logger:    logger,
		minSeason: cfg.MinSeason,
	}
}

// MinSeason returns the configured season floor.
func (b *Builder) MinSeason() int {
	return b.minSeason
}

// load fetches a table through the store, wrapping any failure as an
// UnavailableError attributed to the requesting view.
func (b *Builder) load(ctx context.Context, view, table string) (*dataset.RawTable, error) {
	t, err := b.store.Load(ctx, table)
	if err != nil {
		return nil, &UnavailableError{View: view, Table: table, Err: err}
	}

	return t, nil
}

// Races returns the race calendar at or above the season floor, optionally
// restricted to a single season, ordered by (year, round). Rows missing a
// parseable raceId or year are schema violations, not skippable noise.
func (b *Builder) Races(ctx context.Context, season *int) ([]Race, error) {
	t, err := b.load(ctx, "races", dataset.TableRaces)
	if err != nil {
		return nil, err
	}

	races := make([]Race, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		id, ok := row.Int("raceId")
		if !ok {
			return nil, fmt.Errorf("%w: races row %d has no raceId", dataset.ErrMalformedTable, i)
		}

		year, ok := row.Int("year")
		if !ok {
			return nil, fmt.Errorf("%w: races row %d has no year", dataset.ErrMalformedTable, i)
		}

		if year < b.minSeason {
			continue
		}

		if season != nil && year != *season {
			continue
		}

		round, _ := row.Int("round")
		circuit, _ := row.Int("circuitId")

		races = append(races, Race{
			ID:      id,
			Year:    year,
			Round:   round,
			Name:    row.Text("name"),
			Date:    row.Text("date"),
			Circuit: circuit,
		})
	}

	sort.Slice(races, func(i, j int) bool {
		if races[i].Year != races[j].Year {
			return races[i].Year < races[j].Year
		}

		return races[i].Round < races[j].Round
	})

	return races, nil
}

// RaceIDs resolves the race set for a season filter and intersects it with an
// explicit id list when one is given. The explicit list narrows the resolved
// set; ids outside the floor or season never survive the intersection.
func (b *Builder) RaceIDs(ctx context.Context, season *int, explicit []int) ([]int, error) {
	races, err := b.Races(ctx, season)
	if err != nil {
		return nil, err
	}

	var keep map[int]struct{}

	if explicit != nil {
		keep = make(map[int]struct{}, len(explicit))
		for _, id := range explicit {
			keep[id] = struct{}{}
		}
	}

	ids := make([]int, 0, len(races))

	for _, r := range races {
		if keep != nil {
			if _, ok := keep[r.ID]; !ok {
				continue
			}
		}

		ids = append(ids, r.ID)
	}

	return ids, nil
}

// raceIndex resolves the races matching a filter and returns them keyed by id.
// Every race-joined view starts here, which is what makes the season floor and
// the explicit-id intersection uniform across views.
func (b *Builder) raceIndex(ctx context.Context, f Filter) (map[int]Race, error) {
	races, err := b.Races(ctx, f.Season)
	if err != nil {
		return nil, err
	}

	var keep map[int]struct{}

	if f.RaceIDs != nil {
		keep = make(map[int]struct{}, len(f.RaceIDs))
		for _, id := range f.RaceIDs {
			keep[id] = struct{}{}
		}
	}

	index := make(map[int]Race, len(races))

	for _, r := range races {
		if keep != nil {
			if _, ok := keep[r.ID]; !ok {
				continue
			}
		}

		index[r.ID] = r
	}

	return index, nil
}

// DriverResults returns result rows joined with race context and driver
// names, scoped by the filter. Results without a race in the resolved set are
// dropped; a missing drivers table only costs the display name.
func (b *Builder) DriverResults(ctx context.Context, f Filter) ([]DriverResult, error) {
	races, err := b.raceIndex(ctx, f)
	if err != nil {
		return nil, err
	}

	t, err := b.load(ctx, "driver_results", dataset.TableResults)
	if err != nil {
		return nil, err
	}

	names := b.driverNames(ctx)

	out := make([]DriverResult, 0, t.Len())

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

		constructorID, _ := row.Int("constructorId")
		if f.ConstructorID != nil && constructorID != *f.ConstructorID {
			continue
		}

		positionOrder, _ := row.Int("positionOrder")

		out = append(out, DriverResult{
			RaceID:        raceID,
			Year:          race.Year,
			Round:         race.Round,
			RaceName:      race.Name,
			Date:          race.Date,
			DriverID:      driverID,
			DriverName:    names[driverID],
			ConstructorID: constructorID,
			Grid:          intCell(row, "grid"),
			Position:      intCell(row, "position"),
			PositionOrder: positionOrder,
			Points:        row.FloatOr("points", 0),
			Laps:          intOr(row, "laps", 0),
			StatusID:      intOr(row, "statusId", 0),
		})
	}

	sortByRace(out, func(r DriverResult) (int, int) { return r.Year, r.Round })

	return out, nil
}

// DriverName resolves a driver's display name, or "" when unknown. Name
// lookups degrade quietly; identity tables are context, not requirements.
func (b *Builder) DriverName(ctx context.Context, driverID int) string {
	return b.driverNames(ctx)[driverID]
}

// ConstructorName resolves a constructor's display name, or "" when unknown.
func (b *Builder) ConstructorName(ctx context.Context, constructorID int) string {
	return b.constructorNames(ctx)[constructorID]
}

// driverNames builds the driverId -> display name map. A missing or broken
// drivers table yields an empty map and a warning, never an error.
func (b *Builder) driverNames(ctx context.Context) map[int]string {
	t, err := b.store.Load(ctx, dataset.TableDrivers)
	if err != nil {
		b.logger.Warn("Driver names unavailable", "error", err)

		return map[int]string{}
	}

	names := make(map[int]string, t.Len())

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		id, ok := row.Int("driverId")
		if !ok {
			continue
		}

		name := row.Text("forename")
		if surname := row.Text("surname"); surname != "" {
			if name != "" {
				name += " "
			}

			name += surname
		}

		names[id] = name
	}

	return names
}

// constructorNames builds the constructorId -> display name map with the same
// degradation semantics as driverNames.
func (b *Builder) constructorNames(ctx context.Context) map[int]string {
	t, err := b.store.Load(ctx, dataset.TableConstructors)
	if err != nil {
		b.logger.Warn("Constructor names unavailable", "error", err)

		return map[int]string{}
	}

	names := make(map[int]string, t.Len())

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		id, ok := row.Int("constructorId")
		if !ok {
			continue
		}

		names[id] = row.Text("name")
	}

	return names
}

// driverConstructors maps each driver to the constructor they first appear
// with inside the given race set. Timing tables carry no constructor column,
// so their constructor scoping is resolved through this lineup.
func (b *Builder) driverConstructors(ctx context.Context, races map[int]Race) (map[int]int, error) {
	t, err := b.load(ctx, "driver_constructors", dataset.TableResults)
	if err != nil {
		return nil, err
	}

	lineup := make(map[int]int)

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		raceID, ok := row.Int("raceId")
		if !ok {
			continue
		}

		if _, ok := races[raceID]; !ok {
			continue
		}

		driverID, ok := row.Int("driverId")
		if !ok {
			continue
		}

		if _, seen := lineup[driverID]; seen {
			continue
		}

		constructorID, ok := row.Int("constructorId")
		if !ok {
			continue
		}

		lineup[driverID] = constructorID
	}

	return lineup, nil
}

// intCell returns the cell as *int, nil for null or non-numeric values.
func intCell(row dataset.Row, col string) *int {
	n, ok := row.Int(col)
	if !ok {
		return nil
	}

	return &n
}

// intOr returns the cell as int with a fallback for null cells.
func intOr(row dataset.Row, col string, fallback int) int {
	n, ok := row.Int(col)
	if !ok {
		return fallback
	}

	return n
}

// sortByRace orders rows chronologically by (year, round), keeping the input
// order within a race.
func sortByRace[T any](rows []T, key func(T) (int, int)) {
	sort.SliceStable(rows, func(i, j int) bool {
		yi, ri := key(rows[i])
		yj, rj := key(rows[j])

		if yi != yj {
			return yi < yj
		}

		return ri < rj
	})
}
