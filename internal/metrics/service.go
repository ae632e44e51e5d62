package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/metriccache"
	"github.com/gridstats-io/gridstats/internal/views"
)

type (
	// Service is the cache-then-compute path for metric calculation:
	// registry lookup, parameter validation, cache read, formula
	// evaluation, cache write.
	Service struct {
		registry *Registry
		builder  *views.Builder
		cache    *metriccache.Cache
		logger   *slog.Logger
	}

	// BulkError describes one failed metric within a bulk calculation.
	BulkError struct {
		MetricName string `json:"metric_name"`
		Message    string `json:"message"`
	}
)

// NewService wires the calculation path together.
func NewService(registry *Registry, builder *views.Builder, cache *metriccache.Cache, logger *slog.Logger) *Service {
	return &Service{
		registry: registry,
		builder:  builder,
		cache:    cache,
		logger:   logger,
	}
}

// Registry exposes the catalog for listings.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Calculate computes one metric. ErrUnknownMetric and ErrInvalidParameter
// abort the call; view unavailability, malformed dataset tables, and empty
// data come back as a Result with a nil value and an explanatory metadata
// entry. Cache faults never surface.
func (s *Service) Calculate(ctx context.Context, name string, p Params) (*Result, error) {
	m, err := s.registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	if err := validateParams(m, p); err != nil {
		return nil, err
	}

	cacheParams := p.Map()

	if raw, ok := s.cache.Get(name, cacheParams); ok {
		var cached Result
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.logger.Debug("Metric served from cache", "metric", name)

			return &cached, nil
		}

		s.logger.Warn("Cached metric result unreadable, recomputing", "metric", name)
	}

	result, err := m.Compute(ctx, s.builder, p)
	if err != nil {
		var unavailable *views.UnavailableError
		if errors.As(err, &unavailable) {
			s.logger.Warn("Metric data unavailable",
				"metric", name,
				"view", unavailable.View,
				"table", unavailable.Table,
				"error", unavailable.Err)

			return noResult(ctx, s.builder, name, p,
				fmt.Sprintf("data unavailable: table %q could not be loaded", unavailable.Table)), nil
		}

		// Row-level malformation found during view building degrades the
		// same way as a table that failed to load.
		if errors.Is(err, dataset.ErrMalformedTable) {
			s.logger.Warn("Metric data malformed",
				"metric", name,
				"error", err)

			return noResult(ctx, s.builder, name, p, "data unavailable: dataset table is malformed"), nil
		}

		return nil, fmt.Errorf("compute metric %q: %w", name, err)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(result); err == nil {
		s.cache.Set(name, cacheParams, raw)
	} else {
		s.logger.Warn("Metric result not cacheable", "metric", name, "error", err)
	}

	return result, nil
}

// CalculateBulk computes several metrics against one parameter set. Failures
// are collected per metric; one bad name or parameter never sinks the batch.
func (s *Service) CalculateBulk(ctx context.Context, names []string, p Params) ([]*Result, []BulkError) {
	results := make([]*Result, 0, len(names))

	var failures []BulkError

	for _, name := range names {
		result, err := s.Calculate(ctx, name, p)
		if err != nil {
			failures = append(failures, BulkError{MetricName: name, Message: err.Error()})

			continue
		}

		results = append(results, result)
	}

	return results, failures
}

// validateParams enforces the kind's required identity parameter.
func validateParams(m Metric, p Params) error {
	switch m.Kind() {
	case KindDriver:
		if p.DriverID == nil {
			return fmt.Errorf("%w: metric %q requires driver_id", ErrInvalidParameter, m.Name())
		}
	case KindConstructor:
		if p.ConstructorID == nil {
			return fmt.Errorf("%w: metric %q requires constructor_id", ErrInvalidParameter, m.Name())
		}
	}

	return nil
}
