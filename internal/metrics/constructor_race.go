package metrics

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// constructorRaceMetrics derive from the per-(race, constructor) joint
// aggregation: a "win" is the team's best car, a "1-2" needs both cars.
func constructorRaceMetrics() []Metric {
	raceTables := []string{dataset.TableRaces, dataset.TableResults}

	groupMetric := func(name, description string, value func(groups []views.ConstructorRaceGroup) (any, map[string]any)) Metric {
		return &metric{
			name:        name,
			description: description,
			kind:        KindConstructor,
			tables:      raceTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				groups, err := b.ConstructorRaceGroups(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(groups) == 0 {
					return noResult(ctx, b, name, p, "no race results for the given parameters"), nil
				}

				v, meta := value(groups)

				return constructorResult(ctx, b, name, p, v, meta), nil
			},
		}
	}

	return []Metric{
		groupMetric("constructor_points_per_race",
			"Team points scored per race across both cars.",
			func(groups []views.ConstructorRaceGroup) (any, map[string]any) {
				var total float64
				for _, g := range groups {
					total += g.TotalPoints
				}

				return round3(total / float64(len(groups))), map[string]any{
					"total_points": total,
					"races":        len(groups),
				}
			}),
		groupMetric("constructor_win_rate",
			"Share of races won by the team's best car.",
			func(groups []views.ConstructorRaceGroup) (any, map[string]any) {
				wins := 0
				for _, g := range groups {
					if g.BestPosition != nil && *g.BestPosition == 1 {
						wins++
					}
				}

				return ratio(wins, len(groups)), map[string]any{
					"wins":  wins,
					"races": len(groups),
				}
			}),
		groupMetric("constructor_podium_rate",
			"Share of races with at least one car on the podium.",
			func(groups []views.ConstructorRaceGroup) (any, map[string]any) {
				podiums := 0
				for _, g := range groups {
					if g.BestPosition != nil && *g.BestPosition <= 3 {
						podiums++
					}
				}

				return ratio(podiums, len(groups)), map[string]any{
					"podium_races": podiums,
					"races":        len(groups),
				}
			}),
		groupMetric("constructor_race_wins",
			"Number of 1-2 finishes: both cars classified first and second.",
			func(groups []views.ConstructorRaceGroup) (any, map[string]any) {
				oneTwos := 0
				for _, g := range groups {
					if g.BestPosition != nil && g.WorstPosition != nil &&
						*g.BestPosition == 1 && *g.WorstPosition == 2 && g.Finishers == 2 {
						oneTwos++
					}
				}

				return oneTwos, map[string]any{
					"races": len(groups),
				}
			}),
		groupMetric("constructor_podium_lockouts",
			"Number of races with two or more cars on the podium.",
			func(groups []views.ConstructorRaceGroup) (any, map[string]any) {
				lockouts := 0
				for _, g := range groups {
					if g.PodiumCount >= 2 {
						lockouts++
					}
				}

				return lockouts, map[string]any{
					"races": len(groups),
				}
			}),
		groupMetric("constructor_points_scoring_rate",
			"Share of races where the team scored at least one point.",
			func(groups []views.ConstructorRaceGroup) (any, map[string]any) {
				scoring := 0
				for _, g := range groups {
					if g.TotalPoints > 0 {
						scoring++
					}
				}

				return ratio(scoring, len(groups)), map[string]any{
					"scoring_races": scoring,
					"races":         len(groups),
				}
			}),
		groupMetric("constructor_race_win_streak",
			"Longest run of consecutive race wins in chronological order.",
			func(groups []views.ConstructorRaceGroup) (any, map[string]any) {
				longest, current := 0, 0

				for _, g := range groups {
					if g.BestPosition != nil && *g.BestPosition == 1 {
						current++
						if current > longest {
							longest = current
						}
					} else {
						current = 0
					}
				}

				return longest, map[string]any{
					"races": len(groups),
				}
			}),
		&metric{
			name:        "constructor_top_three_finishes",
			description: "Number of individual car finishes in the top three.",
			kind:        KindConstructor,
			tables:      raceTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				results, err := b.ConstructorResults(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(results) == 0 {
					return noResult(ctx, b, "constructor_top_three_finishes", p, "no race results for the given parameters"), nil
				}

				podiums := 0
				for _, r := range results {
					if r.Position != nil && *r.Position <= 3 {
						podiums++
					}
				}

				return constructorResult(ctx, b, "constructor_top_three_finishes", p, podiums, map[string]any{
					"entries": len(results),
				}), nil
			},
		},
		&metric{
			name:        "constructor_average_finish_position",
			description: "Mean classified finishing position across both cars.",
			kind:        KindConstructor,
			tables:      raceTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				results, err := b.ConstructorResults(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				positions := make([]float64, 0, len(results))
				for _, r := range results {
					if r.Position != nil {
						positions = append(positions, float64(*r.Position))
					}
				}

				if len(positions) == 0 {
					return noResult(ctx, b, "constructor_average_finish_position", p, "no classified finishes for the given parameters"), nil
				}

				return constructorResult(ctx, b, "constructor_average_finish_position", p, round3(mean(positions)), map[string]any{
					"entries":  len(results),
					"finishes": len(positions),
				}), nil
			},
		},
	}
}
