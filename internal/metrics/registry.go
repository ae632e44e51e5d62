package metrics

import (
	"fmt"
	"sort"
)

// Registry is the static name -> calculator mapping over the closed metric
// catalog. It is populated once at construction and read-only afterwards, so
// it needs no locking.
type Registry struct {
	metrics map[string]Metric
}

// Description summarizes a registered metric for catalog listings.
type Description struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Kind           Kind     `json:"kind"`
	RequiredTables []string `json:"required_tables"`
}

// NewRegistry builds the registry over the full catalog.
func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]Metric)}

	for _, group := range [][]Metric{
		driverRaceMetrics(),
		driverQualifyingMetrics(),
		driverTeammateMetrics(),
		constructorChampionshipMetrics(),
		constructorRaceMetrics(),
		constructorQualifyingMetrics(),
		constructorReliabilityMetrics(),
		constructorPitStopMetrics(),
		constructorLapMetrics(),
	} {
		for _, m := range group {
			if _, dup := r.metrics[m.Name()]; dup {
				// The catalog is assembled at init time from literals; a
				// duplicate name is a programming error.
				panic(fmt.Sprintf("metrics: duplicate metric name %q", m.Name()))
			}

			r.metrics[m.Name()] = m
		}
	}

	return r
}

// Lookup resolves a metric by name.
func (r *Registry) Lookup(name string) (Metric, error) {
	m, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}

	return m, nil
}

// Len returns the catalog size.
func (r *Registry) Len() int {
	return len(r.metrics)
}

// Available lists the catalog grouped by kind, each group sorted by name.
func (r *Registry) Available() map[Kind][]Description {
	out := make(map[Kind][]Description, 2)

	for _, m := range r.metrics {
		out[m.Kind()] = append(out[m.Kind()], Description{
			Name:           m.Name(),
			Description:    m.Description(),
			Kind:           m.Kind(),
			RequiredTables: m.RequiredTables(),
		})
	}

	for kind := range out {
		sort.Slice(out[kind], func(i, j int) bool {
			return out[kind][i].Name < out[kind][j].Name
		})
	}

	return out
}
