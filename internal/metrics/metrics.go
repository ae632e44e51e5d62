// Package metrics defines the closed catalog of performance metrics, the
// registry that exposes it, and the service that glues registry, view builder
// and cache together.
package metrics

import (
	"context"
	"errors"

	"github.com/gridstats-io/gridstats/internal/views"
)

// Kind classifies a metric by the entity it scores.
type Kind string

const (
	KindDriver      Kind = "driver"
	KindConstructor Kind = "constructor"
)

var (
	// ErrUnknownMetric is returned for a registry lookup miss.
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrInvalidParameter is returned when a metric is invoked without a
	// parameter its kind requires.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Metric is a single computable statistic. Implementations are stateless;
// all data access goes through the view builder passed to Compute.
type Metric interface {
	Name() string
	Description() string
	Kind() Kind
	RequiredTables() []string
	Compute(ctx context.Context, b *views.Builder, p Params) (*Result, error)
}

// metric is the catalog's function-backed Metric implementation. The catalog
// is a fixed list of formulas, not an extension point, so one closure-holding
// struct covers all of them.
type metric struct {
	name        string
	description string
	kind        Kind
	tables      []string
	compute     func(ctx context.Context, b *views.Builder, p Params) (*Result, error)
}

func (m *metric) Name() string             { return m.name }
func (m *metric) Description() string      { return m.description }
func (m *metric) Kind() Kind               { return m.kind }
func (m *metric) RequiredTables() []string { return m.tables }

func (m *metric) Compute(ctx context.Context, b *views.Builder, p Params) (*Result, error) {
	return m.compute(ctx, b, p)
}
