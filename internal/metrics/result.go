package metrics

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/gridstats-io/gridstats/internal/views"
)

// ErrUnserializableValue is returned when a formula produces a value outside
// the serializable vocabulary: bool, integers, floats, strings, nil, and
// slices or string-keyed maps of those.
var ErrUnserializableValue = errors.New("unserializable metric value")

// Result is a computed metric value with its identifying context. Value is a
// scalar or a nested mapping; a nil Value with an explanatory metadata entry
// is the "no result" outcome for unavailable or empty data.
type Result struct {
	MetricName      string         `json:"metric_name"`
	Value           any            `json:"value"`
	DriverID        *int           `json:"driver_id,omitempty"`
	DriverName      string         `json:"driver_name,omitempty"`
	ConstructorID   *int           `json:"constructor_id,omitempty"`
	ConstructorName string         `json:"constructor_name,omitempty"`
	Season          *int           `json:"season,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Validate checks that the result's value and metadata stay inside the
// serializable vocabulary.
func (r *Result) Validate() error {
	if err := validateValue(r.Value); err != nil {
		return fmt.Errorf("metric %q value: %w", r.MetricName, err)
	}

	for k, v := range r.Metadata {
		if err := validateValue(v); err != nil {
			return fmt.Errorf("metric %q metadata %q: %w", r.MetricName, k, err)
		}
	}

	return nil
}

func validateValue(v any) error {
	if v == nil {
		return nil
	}

	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := validateValue(rv.Index(i).Interface()); err != nil {
				return err
			}
		}

		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map with %s keys", ErrUnserializableValue, rv.Type().Key().Kind())
		}

		for _, k := range rv.MapKeys() {
			if err := validateValue(rv.MapIndex(k).Interface()); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnserializableValue, v)
	}
}

// driverResult builds a Result for a driver-kind metric, resolving the
// driver's display name.
func driverResult(ctx context.Context, b *views.Builder, name string, p Params, value any, meta map[string]any) *Result {
	r := &Result{
		MetricName: name,
		Value:      value,
		DriverID:   p.DriverID,
		Season:     p.Season,
		Metadata:   meta,
	}

	if p.DriverID != nil {
		r.DriverName = b.DriverName(ctx, *p.DriverID)
	}

	return r
}

// constructorResult builds a Result for a constructor-kind metric.
func constructorResult(ctx context.Context, b *views.Builder, name string, p Params, value any, meta map[string]any) *Result {
	r := &Result{
		MetricName:    name,
		Value:         value,
		ConstructorID: p.ConstructorID,
		Season:        p.Season,
		Metadata:      meta,
	}

	if p.ConstructorID != nil {
		r.ConstructorName = b.ConstructorName(ctx, *p.ConstructorID)
	}

	return r
}

// noResult is the "no data for these parameters" outcome. It is a valid
// Result, not an error, so bulk calculation continues past it.
func noResult(ctx context.Context, b *views.Builder, name string, p Params, message string) *Result {
	r := &Result{
		MetricName:    name,
		Value:         nil,
		DriverID:      p.DriverID,
		ConstructorID: p.ConstructorID,
		Season:        p.Season,
		Metadata:      map[string]any{"message": message},
	}

	if p.DriverID != nil {
		r.DriverName = b.DriverName(ctx, *p.DriverID)
	}

	if p.ConstructorID != nil {
		r.ConstructorName = b.ConstructorName(ctx, *p.ConstructorID)
	}

	return r
}
