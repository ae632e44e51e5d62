package metrics

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// driverTeammateMetrics are head-to-head comparisons against the driver's
// teammate, defined only for races where the constructor fielded exactly two
// cars and both have the compared signal.
func driverTeammateMetrics() []Metric {
	return []Metric{
		&metric{
			name:        "teammate_qualifying_comparison",
			description: "Head-to-head qualifying record against the teammate.",
			kind:        KindDriver,
			tables:      []string{dataset.TableRaces, dataset.TableResults, dataset.TableQualifying},
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				scope := views.Filter{Season: p.Season, RaceIDs: p.RaceIDs}

				pairs, err := b.TeammatePairs(ctx, scope)
				if err != nil {
					return nil, err
				}

				quali, err := b.Qualifying(ctx, scope)
				if err != nil {
					return nil, err
				}

				positions := make(map[[2]int]int, len(quali))
				for _, q := range quali {
					if q.Position != nil {
						positions[[2]int{q.RaceID, q.DriverID}] = *q.Position
					}
				}

				ahead, behind := headToHead(pairs, *p.DriverID, func(raceID, driverID int) (int, bool) {
					pos, ok := positions[[2]int{raceID, driverID}]

					return pos, ok
				})

				if ahead+behind == 0 {
					return noResult(ctx, b, "teammate_qualifying_comparison", p, "no comparable teammate qualifying sessions"), nil
				}

				return driverResult(ctx, b, "teammate_qualifying_comparison", p, map[string]any{
					"ahead":      ahead,
					"behind":     behind,
					"sessions":   ahead + behind,
					"ahead_rate": ratio(ahead, ahead+behind),
				}, nil), nil
			},
		},
		&metric{
			name:        "teammate_race_comparison",
			description: "Head-to-head race finishing record against the teammate, over races both cars finished.",
			kind:        KindDriver,
			tables:      []string{dataset.TableRaces, dataset.TableResults},
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				scope := views.Filter{Season: p.Season, RaceIDs: p.RaceIDs}

				pairs, err := b.TeammatePairs(ctx, scope)
				if err != nil {
					return nil, err
				}

				results, err := b.DriverResults(ctx, scope)
				if err != nil {
					return nil, err
				}

				positions := make(map[[2]int]int, len(results))
				for _, r := range results {
					if r.Position != nil {
						positions[[2]int{r.RaceID, r.DriverID}] = *r.Position
					}
				}

				ahead, behind := headToHead(pairs, *p.DriverID, func(raceID, driverID int) (int, bool) {
					pos, ok := positions[[2]int{raceID, driverID}]

					return pos, ok
				})

				if ahead+behind == 0 {
					return noResult(ctx, b, "teammate_race_comparison", p, "no comparable teammate races"), nil
				}

				return driverResult(ctx, b, "teammate_race_comparison", p, map[string]any{
					"ahead":      ahead,
					"behind":     behind,
					"races":      ahead + behind,
					"ahead_rate": ratio(ahead, ahead+behind),
				}, nil), nil
			},
		},
	}
}

// headToHead tallies races where both the driver and their teammate have a
// position. Ties cannot occur; positions are unique within a race.
func headToHead(pairs []views.TeammatePair, driverID int, position func(raceID, driverID int) (int, bool)) (ahead, behind int) {
	for _, pair := range pairs {
		teammate := 0

		switch driverID {
		case pair.Driver1ID:
			teammate = pair.Driver2ID
		case pair.Driver2ID:
			teammate = pair.Driver1ID
		default:
			continue
		}

		own, ok := position(pair.RaceID, driverID)
		if !ok {
			continue
		}

		other, ok := position(pair.RaceID, teammate)
		if !ok {
			continue
		}

		if own < other {
			ahead++
		} else {
			behind++
		}
	}

	return ahead, behind
}
