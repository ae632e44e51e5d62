package metrics

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// constructorLapMetrics cover race-pace statistics over both cars' laps.
// Lap durations are reported in seconds.
func constructorLapMetrics() []Metric {
	lapTables := []string{dataset.TableRaces, dataset.TableLapTimes, dataset.TableResults}

	lapMetric := func(name, description string, value func(seconds []float64) (any, map[string]any)) Metric {
		return &metric{
			name:        name,
			description: description,
			kind:        KindConstructor,
			tables:      lapTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				laps, err := b.LapTimes(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				seconds := lapSeconds(laps)
				if len(seconds) == 0 {
					return noResult(ctx, b, name, p, "no lap time data for the given parameters"), nil
				}

				v, meta := value(seconds)

				return constructorResult(ctx, b, name, p, v, meta), nil
			},
		}
	}

	return []Metric{
		lapMetric("constructor_average_lap_time",
			"Mean lap time in seconds.",
			func(seconds []float64) (any, map[string]any) {
				return round3(mean(seconds)), map[string]any{
					"laps": len(seconds),
				}
			}),
		lapMetric("constructor_fastest_lap",
			"Fastest lap time in seconds.",
			func(seconds []float64) (any, map[string]any) {
				fastest := seconds[0]
				for _, s := range seconds[1:] {
					if s < fastest {
						fastest = s
					}
				}

				return round3(fastest), map[string]any{
					"laps": len(seconds),
				}
			}),
		lapMetric("constructor_lap_time_consistency",
			"Standard deviation of lap times in seconds.",
			func(seconds []float64) (any, map[string]any) {
				return round3(stddev(seconds)), map[string]any{
					"laps":             len(seconds),
					"average_lap_time": round3(mean(seconds)),
				}
			}),
	}
}

func lapSeconds(laps []views.LapTime) []float64 {
	seconds := make([]float64, 0, len(laps))

	for _, l := range laps {
		if l.Milliseconds != nil {
			seconds = append(seconds, float64(*l.Milliseconds)/1000)
		}
	}

	return seconds
}
