package metrics

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// constructorQualifyingMetrics cover team qualifying performance over both
// cars' sessions.
func constructorQualifyingMetrics() []Metric {
	qualiTables := []string{dataset.TableRaces, dataset.TableQualifying, dataset.TableResults}

	qualiMetric := func(name, description string, value func(rows []views.QualifyingResult) (any, map[string]any, bool)) Metric {
		return &metric{
			name:        name,
			description: description,
			kind:        KindConstructor,
			tables:      qualiTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				rows, err := b.Qualifying(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				v, meta, ok := value(rows)
				if !ok {
					return noResult(ctx, b, name, p, "no qualifying results for the given parameters"), nil
				}

				return constructorResult(ctx, b, name, p, v, meta), nil
			},
		}
	}

	return []Metric{
		qualiMetric("constructor_pole_position_rate",
			"Poles per race weekend entered.",
			func(rows []views.QualifyingResult) (any, map[string]any, bool) {
				races := distinctRaces(rows)
				if races == 0 {
					return nil, nil, false
				}

				poles := 0
				for _, r := range rows {
					if r.Position != nil && *r.Position == 1 {
						poles++
					}
				}

				return ratio(poles, races), map[string]any{
					"poles": poles,
					"races": races,
				}, true
			}),
		qualiMetric("constructor_average_qualifying_position",
			"Mean qualifying position over both cars.",
			func(rows []views.QualifyingResult) (any, map[string]any, bool) {
				positions := qualifyingPositions(rows)
				if len(positions) == 0 {
					return nil, nil, false
				}

				return round3(mean(positions)), map[string]any{
					"sessions": len(positions),
				}, true
			}),
		qualiMetric("constructor_qualifying_consistency",
			"Standard deviation of both cars' qualifying positions.",
			func(rows []views.QualifyingResult) (any, map[string]any, bool) {
				positions := qualifyingPositions(rows)
				if len(positions) == 0 {
					return nil, nil, false
				}

				return round3(stddev(positions)), map[string]any{
					"sessions":         len(positions),
					"average_position": round3(mean(positions)),
				}, true
			}),
		qualiMetric("constructor_front_row_start_rate",
			"Share of qualifying entries starting on the front row.",
			func(rows []views.QualifyingResult) (any, map[string]any, bool) {
				if len(rows) == 0 {
					return nil, nil, false
				}

				frontRows := 0
				for _, r := range rows {
					if r.Position != nil && *r.Position <= 2 {
						frontRows++
					}
				}

				return ratio(frontRows, len(rows)), map[string]any{
					"front_row_starts": frontRows,
					"sessions":         len(rows),
				}, true
			}),
	}
}

func distinctRaces(rows []views.QualifyingResult) int {
	seen := make(map[int]struct{}, len(rows))

	for _, r := range rows {
		seen[r.RaceID] = struct{}{}
	}

	return len(seen)
}
