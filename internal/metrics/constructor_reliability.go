package metrics

import (
	"context"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/views"
)

// mechanicalStatuses are the status texts counted as car failures, as opposed
// to driver errors, collisions, or regulatory exclusions.
var mechanicalStatuses = map[string]struct{}{
	"Engine":           {},
	"Gearbox":          {},
	"Transmission":     {},
	"Clutch":           {},
	"Hydraulics":       {},
	"Electrical":       {},
	"Electronics":      {},
	"Brakes":           {},
	"Suspension":       {},
	"Power Unit":       {},
	"Power loss":       {},
	"Turbo":            {},
	"ERS":              {},
	"Battery":          {},
	"Fuel system":      {},
	"Fuel pressure":    {},
	"Fuel pump":        {},
	"Oil leak":         {},
	"Oil pressure":     {},
	"Water leak":       {},
	"Water pressure":   {},
	"Overheating":      {},
	"Cooling system":   {},
	"Exhaust":          {},
	"Throttle":         {},
	"Steering":         {},
	"Driveshaft":       {},
	"Differential":     {},
	"Wheel":            {},
	"Wheel nut":        {},
	"Vibrations":       {},
	"Mechanical":       {},
	"Technical":        {},
	"Radiator":         {},
	"Alternator":       {},
	"Launch control":   {},
	"Fire":             {},
	"Engine fire":      {},
	"Engine misfire":   {},
	"Pneumatics":       {},
	"Seat":             {},
	"Undertray":        {},
	"Rear wing":        {},
	"Front wing":       {},
	"Brake duct":       {},
	"Halo":             {},
	"Safety belt":      {},
	"Spark plugs":      {},
	"Track rod":        {},
	"Distributor":      {},
	"CV joint":         {},
	"Crankshaft":       {},
	"Supercharger":     {},
	"Magneto":          {},
	"Axle":             {},
	"Chassis":          {},
	"Injection":        {},
	"Ignition":         {},
	"Out of fuel":      {},
	"Fuel leak":        {},
	"Puncture":         {},
	"Tyre":             {},
	"Tyre puncture":    {},
	"Wheel bearing":    {},
	"Oil line":         {},
	"Fuel line":        {},
	"Broken wing":      {},
	"Heat shield fire": {},
	"Debris":           {},
}

// constructorReliabilityMetrics cover finishing reliability. The DNF signal
// is always the coerced-null position; status text only refines a DNF's
// classification, it never defines one.
func constructorReliabilityMetrics() []Metric {
	resultTables := []string{dataset.TableRaces, dataset.TableResults}

	return []Metric{
		&metric{
			name:        "constructor_dnf_rate",
			description: "Share of car entries without a classified finish.",
			kind:        KindConstructor,
			tables:      resultTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				results, err := b.ConstructorResults(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(results) == 0 {
					return noResult(ctx, b, "constructor_dnf_rate", p, "no race results for the given parameters"), nil
				}

				dnfs := 0
				for _, r := range results {
					if r.Position == nil {
						dnfs++
					}
				}

				return constructorResult(ctx, b, "constructor_dnf_rate", p, ratio(dnfs, len(results)), map[string]any{
					"dnfs":    dnfs,
					"entries": len(results),
				}), nil
			},
		},
		&metric{
			name:        "constructor_finish_rate",
			description: "Share of car entries with a classified finish.",
			kind:        KindConstructor,
			tables:      resultTables,
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				results, err := b.ConstructorResults(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(results) == 0 {
					return noResult(ctx, b, "constructor_finish_rate", p, "no race results for the given parameters"), nil
				}

				finishes := 0
				for _, r := range results {
					if r.Position != nil {
						finishes++
					}
				}

				return constructorResult(ctx, b, "constructor_finish_rate", p, ratio(finishes, len(results)), map[string]any{
					"finishes": finishes,
					"entries":  len(results),
				}), nil
			},
		},
		&metric{
			name:        "constructor_mechanical_failure_rate",
			description: "Share of car entries retired with a mechanical failure status.",
			kind:        KindConstructor,
			tables:      []string{dataset.TableRaces, dataset.TableResults, dataset.TableStatus},
			compute: func(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
				rows, err := b.Reliability(ctx, p.Filter())
				if err != nil {
					return nil, err
				}

				if len(rows) == 0 {
					return noResult(ctx, b, "constructor_mechanical_failure_rate", p, "no race results for the given parameters"), nil
				}

				failures := 0
				for _, r := range rows {
					if r.Position != nil {
						continue
					}

					if _, ok := mechanicalStatuses[r.Status]; ok {
						failures++
					}
				}

				return constructorResult(ctx, b, "constructor_mechanical_failure_rate", p, ratio(failures, len(rows)), map[string]any{
					"mechanical_failures": failures,
					"entries":             len(rows),
				}), nil
			},
		},
	}
}
