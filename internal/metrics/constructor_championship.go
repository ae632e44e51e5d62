package metrics

import (
	"context"
	"strconv"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// constructorChampionshipMetrics derive from final season standings: the last
// standings row by round, never a recomputed points sum.
func constructorChampionshipMetrics() []Metric {
	standingsTables := []string{dataset.TableRaces, dataset.TableConstructorStandings}

	return []Metric{
		&metric{
			name:        "constructor_championship_position",
			description: "Final championship position per season.",
			kind:        KindConstructor,
			tables:      standingsTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				standings, err := constructorStandings(ctx, b, p)
				if err != nil {
					return nil, err
				}

				if len(standings) == 0 {
					return noResult(ctx, b, "constructor_championship_position", p, "no standings for the given parameters"), nil
				}

				if p.Season != nil {
					return constructorResult(ctx, b, "constructor_championship_position", p, standings[0].Position, map[string]any{
						"points": standings[0].Points,
					}), nil
				}

				bySeason := make(map[string]any, len(standings))
				for _, s := range standings {
					bySeason[strconv.Itoa(s.Season)] = s.Position
				}

				return constructorResult(ctx, b, "constructor_championship_position", p, bySeason, map[string]any{
					"seasons": len(standings),
				}), nil
			},
		},
		&metric{
			name:        "constructor_championship_wins",
			description: "Number of seasons finished first in the championship.",
			kind:        KindConstructor,
			tables:      standingsTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				standings, err := constructorStandings(ctx, b, p)
				if err != nil {
					return nil, err
				}

				if len(standings) == 0 {
					return noResult(ctx, b, "constructor_championship_wins", p, "no standings for the given parameters"), nil
				}

				titles := 0
				for _, s := range standings {
					if s.Position == 1 {
						titles++
					}
				}

				return constructorResult(ctx, b, "constructor_championship_wins", p, titles, map[string]any{
					"seasons": len(standings),
				}), nil
			},
		},
		&metric{
			name:        "constructor_points_per_season",
			description: "Mean championship points at season end.",
			kind:        KindConstructor,
			tables:      standingsTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				standings, err := constructorStandings(ctx, b, p)
				if err != nil {
					return nil, err
				}

				if len(standings) == 0 {
					return noResult(ctx, b, "constructor_points_per_season", p, "no standings for the given parameters"), nil
				}

				points := make([]float64, 0, len(standings))
				for _, s := range standings {
					points = append(points, s.Points)
				}

				return constructorResult(ctx, b, "constructor_points_per_season", p, round3(mean(points)), map[string]any{
					"seasons": len(standings),
				}), nil
			},
		},
	}
}

// constructorStandings returns the constructor's final standing rows for the
// requested scope.
func constructorStandings(ctx context.Context, b *views.Builder, p Params) ([]views.Standing, error) {
	all, err := b.ConstructorStandings(ctx, p.Season)
	if err != nil {
		return nil, err
	}

	own := make([]views.Standing, 0, len(all))

	for _, s := range all {
		if s.ConstructorID == *p.ConstructorID {
			own = append(own, s)
		}
	}

	return own, nil
}
