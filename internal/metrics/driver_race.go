package metrics

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// driverRaceMetrics covers race-result statistics for a single driver. DNF
// detection is the coerced-null position: unclassified rows are excluded
// from finish averages but always count as entries.
func driverRaceMetrics() []Metric {
	raceTables := []string{dataset.TableRaces, dataset.TableResults}

	return []Metric{
		&metric{
			name:        "average_finish_position",
			description: "Mean classified finishing position; DNF entries are excluded from the average but counted as entries.",
			kind:        KindDriver,
			tables:      raceTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				results, err := b.DriverResults(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(results) == 0 {
					return noResult(ctx, b, "average_finish_position", p, "no race results for the given parameters"), nil
				}

				positions := classifiedPositions(results)
				if len(positions) == 0 {
					return noResult(ctx, b, "average_finish_position", p, "no classified finishes for the given parameters"), nil
				}

				return driverResult(ctx, b, "average_finish_position", p, round3(mean(positions)), map[string]any{
					"races_entered": len(results),
					"finishes":      len(positions),
				}), nil
			},
		},
		&metric{
			name:        "points_per_race",
			description: "Championship points scored per race entered.",
			kind:        KindDriver,
			tables:      raceTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				results, err := b.DriverResults(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(results) == 0 {
					return noResult(ctx, b, "points_per_race", p, "no race results for the given parameters"), nil
				}

				var total float64
				for _, r := range results {
					total += r.Points
				}

				return driverResult(ctx, b, "points_per_race", p, round3(total/float64(len(results))), map[string]any{
					"total_points":  total,
					"races_entered": len(results),
				}), nil
			},
		},
		&metric{
			name:        "dnf_rate",
			description: "Share of race entries without a classified finishing position.",
			kind:        KindDriver,
			tables:      raceTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				results, err := b.DriverResults(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(results) == 0 {
					return noResult(ctx, b, "dnf_rate", p, "no race results for the given parameters"), nil
				}

				dnfs := 0
				for _, r := range results {
					if r.Position == nil {
						dnfs++
					}
				}

				return driverResult(ctx, b, "dnf_rate", p, ratio(dnfs, len(results)), map[string]any{
					"dnfs":          dnfs,
					"races_entered": len(results),
				}), nil
			},
		},
		&metric{
			name:        "podium_rate",
			description: "Share of race entries finishing in the top three.",
			kind:        KindDriver,
			tables:      raceTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				results, err := b.DriverResults(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(results) == 0 {
					return noResult(ctx, b, "podium_rate", p, "no race results for the given parameters"), nil
				}

				podiums := 0
				for _, r := range results {
					if r.Position != nil && *r.Position <= 3 {
						podiums++
					}
				}

				return driverResult(ctx, b, "podium_rate", p, ratio(podiums, len(results)), map[string]any{
					"podiums":       podiums,
					"races_entered": len(results),
				}), nil
			},
		},
	}
}

func classifiedPositions(results []views.DriverResult) []float64 {
	positions := make([]float64, 0, len(results))

	for _, r := range results {
		if r.Position != nil {
			positions = append(positions, float64(*r.Position))
		}
	}

	return positions
}
