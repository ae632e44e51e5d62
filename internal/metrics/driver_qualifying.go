package metrics

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// driverQualifyingMetrics covers single-driver qualifying statistics.
func driverQualifyingMetrics() []Metric {
	qualiTables := []string{dataset.TableRaces, dataset.TableQualifying}

	return []Metric{
		&metric{
			name:        "qualifying_position_average",
			description: "Mean qualifying position over sessions with a set time.",
			kind:        KindDriver,
			tables:      qualiTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				rows, err := b.Qualifying(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				positions := qualifyingPositions(rows)
				if len(positions) == 0 {
					return noResult(ctx, b, "qualifying_position_average", p, "no qualifying results for the given parameters"), nil
				}

				return driverResult(ctx, b, "qualifying_position_average", p, round3(mean(positions)), map[string]any{
					"sessions": len(positions),
				}), nil
			},
		},
		&metric{
			name:        "qualifying_consistency",
			description: "Standard deviation of qualifying positions; lower means more consistent.",
			kind:        KindDriver,
			tables:      qualiTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				rows, err := b.Qualifying(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				positions := qualifyingPositions(rows)
				if len(positions) == 0 {
					return noResult(ctx, b, "qualifying_consistency", p, "no qualifying results for the given parameters"), nil
				}

				return driverResult(ctx, b, "qualifying_consistency", p, round3(stddev(positions)), map[string]any{
					"sessions":         len(positions),
					"average_position": round3(mean(positions)),
				}), nil
			},
		},
		&metric{
			name:        "pole_position_rate",
			description: "Share of qualifying sessions ending on pole.",
			kind:        KindDriver,
			tables:      qualiTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				rows, err := b.Qualifying(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(rows) == 0 {
					return noResult(ctx, b, "pole_position_rate", p, "no qualifying results for the given parameters"), nil
				}

				poles := 0
				for _, r := range rows {
					if r.Position != nil && *r.Position == 1 {
						poles++
					}
				}

				return driverResult(ctx, b, "pole_position_rate", p, ratio(poles, len(rows)), map[string]any{
					"poles":    poles,
					"sessions": len(rows),
				}), nil
			},
		},
	}
}

func qualifyingPositions(rows []views.QualifyingResult) []float64 {
	positions := make([]float64, 0, len(rows))

	for _, r := range rows {
		if r.Position != nil {
			positions = append(positions, float64(*r.Position))
		}
	}

	return positions
}
