package views

import (
	"context"
	"fmt"
	"sort"

	"github.com/gridstats-io/gridstats/internal/dataset"
)

// ConstructorResults returns per-car result rows joined with race and
// constructor context, scoped by the filter.
func (b *Builder) ConstructorResults(ctx context.Context, f Filter) ([]ConstructorResult, error) {
	races, err := b.raceIndex(ctx, f)
	if err != nil {
		return nil, err
	}

	t, err := b.load(ctx, "constructor_results", dataset.TableResults)
	if err != nil {
		return nil, err
	}

	names := b.constructorNames(ctx)

	out := make([]ConstructorResult, 0, t.Len())

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

		constructorID, _ := row.Int("constructorId")
		if f.ConstructorID != nil && constructorID != *f.ConstructorID {
			continue
		}

		driverID, _ := row.Int("driverId")
		if f.DriverID != nil && driverID != *f.DriverID {
			continue
		}

		positionOrder, _ := row.Int("positionOrder")

		out = append(out, ConstructorResult{
			RaceID:          raceID,
			Year:            race.Year,
			Round:           race.Round,
			RaceName:        race.Name,
			ConstructorID:   constructorID,
			ConstructorName: names[constructorID],
			DriverID:        driverID,
			Grid:            intCell(row, "grid"),
			Position:        intCell(row, "position"),
			PositionOrder:   positionOrder,
			Points:          row.FloatOr("points", 0),
			StatusID:        intOr(row, "statusId", 0),
		})
	}

	sortByRace(out, func(r ConstructorResult) (int, int) { return r.Year, r.Round })

	return out, nil
}

// ConstructorRaceGroups aggregates ConstructorResults per (race, constructor):
// best and worst classified position, entry and finisher counts, podium count,
// and the points sum across both cars. DNF entries contribute to counts and
// points but never to best/worst.
func (b *Builder) ConstructorRaceGroups(ctx context.Context, f Filter) ([]ConstructorRaceGroup, error) {
	results, err := b.ConstructorResults(ctx, f)
	if err != nil {
		return nil, err
	}

	type key struct {
		raceID        int
		constructorID int
	}

	groups := make(map[key]*ConstructorRaceGroup)
	order := make([]key, 0, len(results)/2)

	for _, r := range results {
		k := key{raceID: r.RaceID, constructorID: r.ConstructorID}

		g, ok := groups[k]
		if !ok {
			g = &ConstructorRaceGroup{
				RaceID:        r.RaceID,
				ConstructorID: r.ConstructorID,
				Year:          r.Year,
				Round:         r.Round,
			}
			groups[k] = g
			order = append(order, k)
		}

		g.DriversCount++
		g.TotalPoints += r.Points

		if r.Position == nil {
			continue
		}

		g.Finishers++

		if *r.Position <= 3 {
			g.PodiumCount++
		}

		if g.BestPosition == nil || *r.Position < *g.BestPosition {
			p := *r.Position
			g.BestPosition = &p
		}

		if g.WorstPosition == nil || *r.Position > *g.WorstPosition {
			p := *r.Position
			g.WorstPosition = &p
		}
	}

	out := make([]ConstructorRaceGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}

		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}

		return out[i].ConstructorID < out[j].ConstructorID
	})

	return out, nil
}

// ConstructorStandings returns each constructor's final standing per season:
// the standings row with the highest round in that season. Two rows claiming
// the same round for one group is a data inconsistency and fails the view.
func (b *Builder) ConstructorStandings(ctx context.Context, season *int) ([]Standing, error) {
	races, err := b.raceIndex(ctx, Filter{Season: season})
	if err != nil {
		return nil, err
	}

	t, err := b.load(ctx, "constructor_standings", dataset.TableConstructorStandings)
	if err != nil {
		return nil, err
	}

	type key struct {
		season        int
		constructorID int
	}

	last := make(map[key]Standing)
	rounds := make(map[key]map[int]bool)

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

		constructorID, ok := row.Int("constructorId")
		if !ok {
			continue
		}

		k := key{season: race.Year, constructorID: constructorID}

		s := Standing{
			Season:        race.Year,
			Round:         race.Round,
			ConstructorID: constructorID,
			Points:        row.FloatOr("points", 0),
			Position:      intOr(row, "position", 0),
			Wins:          intOr(row, "wins", 0),
		}

		// The duplicate check runs against every round seen for the group,
		// not just the current maximum, so row order cannot hide a clash.
		if rounds[k] == nil {
			rounds[k] = make(map[int]bool)
		}

		if rounds[k][s.Round] {
			return nil, fmt.Errorf("%w: season %d constructor %d round %d",
				ErrInconsistentStandings, k.season, k.constructorID, s.Round)
		}

		rounds[k][s.Round] = true

		prev, seen := last[k]
		if !seen || s.Round > prev.Round {
			last[k] = s
		}
	}

	out := make([]Standing, 0, len(last))
	for _, s := range last {
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}

		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}

		return out[i].ConstructorID < out[j].ConstructorID
	})

	return out, nil
}

// TeammatePairs lists the races where a constructor fielded exactly two
// distinct drivers. Races with one car or three-driver entries are excluded;
// head-to-head comparisons are only defined for proper pairs.
func (b *Builder) TeammatePairs(ctx context.Context, f Filter) ([]TeammatePair, error) {
	results, err := b.ConstructorResults(ctx, f)
	if err != nil {
		return nil, err
	}

	type key struct {
		raceID        int
		constructorID int
	}

	drivers := make(map[key][]int)
	years := make(map[key]int)
	order := make([]key, 0, len(results)/2)

	for _, r := range results {
		k := key{raceID: r.RaceID, constructorID: r.ConstructorID}

		if _, ok := drivers[k]; !ok {
			order = append(order, k)
			years[k] = r.Year
		}

		dup := false

		for _, id := range drivers[k] {
			if id == r.DriverID {
				dup = true

				break
			}
		}

		if !dup {
			drivers[k] = append(drivers[k], r.DriverID)
		}
	}

	out := make([]TeammatePair, 0, len(order))

	for _, k := range order {
		ids := drivers[k]
		if len(ids) != 2 {
			continue
		}

		out = append(out, TeammatePair{
			RaceID:        k.raceID,
			Year:          years[k],
			ConstructorID: k.constructorID,
			Driver1ID:     ids[0],
			Driver2ID:     ids[1],
		})
	}

	return out, nil
}

// Reliability joins constructor results with status text so formulas can
// classify retirements. A missing status table degrades to empty status
// strings rather than failing the view.
func (b *Builder) Reliability(ctx context.Context, f Filter) ([]ReliabilityRow, error) {
	results, err := b.ConstructorResults(ctx, f)
	if err != nil {
		return nil, err
	}

	statuses := b.statusTexts(ctx)

	out := make([]ReliabilityRow, 0, len(results))

	for _, r := range results {
		out = append(out, ReliabilityRow{
			ConstructorResult: r,
			Status:            statuses[r.StatusID],
		})
	}

	return out, nil
}

// statusTexts builds the statusId -> text map, empty on any load failure.
func (b *Builder) statusTexts(ctx context.Context) map[int]string {
	t, err := b.store.Load(ctx, dataset.TableStatus)
	if err != nil {
		b.logger.Warn("Status texts unavailable", "error", err)

		return map[int]string{}
	}

	texts := make(map[int]string, t.Len())

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		id, ok := row.Int("statusId")
		if !ok {
			continue
		}

		texts[id] = row.Text("status")
	}

	return texts
}
