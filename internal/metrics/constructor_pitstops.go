package metrics

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// constructorPitStopMetrics cover pit crew performance. Durations are
// reported in seconds; rows without a measured duration are skipped.
func constructorPitStopMetrics() []Metric {
	pitTables := []string{dataset.TableRaces, dataset.TablePitStops, dataset.TableResults}

	pitMetric := func(name, description string, value func(stops []views.PitStop, seconds []float64) (any, map[string]any)) Metric {
		return &metric{
			name:        name,
			description: description,
			kind:        KindConstructor,
			tables:      pitTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				stops, err := b.PitStops(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				seconds := stopSeconds(stops)
				if len(seconds) == 0 {
					return noResult(ctx, b, name, p, "no pit stop data for the given parameters"), nil
				}

				v, meta := value(stops, seconds)

				return constructorResult(ctx, b, name, p, v, meta), nil
			},
		}
	}

	return []Metric{
		pitMetric("constructor_average_pit_stop_time",
			"Mean pit stop duration in seconds.",
			func(_ []views.PitStop, seconds []float64) (any, map[string]any) {
				return round3(mean(seconds)), map[string]any{
					"stops": len(seconds),
				}
			}),
		pitMetric("constructor_fastest_pit_stop",
			"Fastest pit stop duration in seconds.",
			func(_ []views.PitStop, seconds []float64) (any, map[string]any) {
				fastest := seconds[0]
				for _, s := range seconds[1:] {
					if s < fastest {
						fastest = s
					}
				}

				return round3(fastest), map[string]any{
					"stops": len(seconds),
				}
			}),
		pitMetric("constructor_pit_stop_consistency",
			"Standard deviation of pit stop durations in seconds.",
			func(_ []views.PitStop, seconds []float64) (any, map[string]any) {
				return round3(stddev(seconds)), map[string]any{
					"stops":            len(seconds),
					"average_duration": round3(mean(seconds)),
				}
			}),
		pitMetric("constructor_sub_three_second_stops",
			"Number of pit stops completed in under three seconds.",
			func(_ []views.PitStop, seconds []float64) (any, map[string]any) {
				fast := 0
				for _, s := range seconds {
					if s < 3 {
						fast++
					}
				}

				return fast, map[string]any{
					"stops": len(seconds),
				}
			}),
		pitMetric("constructor_average_pit_stops_per_race",
			"Mean number of pit stops per race.",
			func(stops []views.PitStop, _ []float64) (any, map[string]any) {
				races := make(map[int]struct{}, len(stops))
				for _, s := range stops {
					races[s.RaceID] = struct{}{}
				}

				return ratio(len(stops), len(races)), map[string]any{
					"stops": len(stops),
					"races": len(races),
				}
			}),
	}
}

func stopSeconds(stops []views.PitStop) []float64 {
	seconds := make([]float64, 0, len(stops))

	for _, s := range stops {
		if s.Milliseconds != nil {
			seconds = append(seconds, float64(*s.Milliseconds)/1000)
		}
	}

	return seconds
}
