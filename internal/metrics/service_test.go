package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstats-io/gridstats/internal/dataset"
)

func TestService_CalculateUnknownMetric(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	_, err := s.Calculate(context.Background(), "lap_record_count", Params{DriverID: intp(44)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestService_CalculateRequiresDriverID(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	_, err := s.Calculate(context.Background(), "dnf_rate", Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestService_CalculateRequiresConstructorID(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	_, err := s.Calculate(context.Background(), "constructor_win_rate", Params{DriverID: intp(44)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestService_Calculate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result, err := s.Calculate(context.Background(), "points_per_race", Params{DriverID: intp(44)})
	require.NoError(t, err)

	assert.Equal(t, "points_per_race", result.MetricName)
	assert.Equal(t, 25.333, result.Value)
	assert.Equal(t, "Lewis Hamilton", result.DriverName)
	require.NotNil(t, result.DriverID)
	assert.Equal(t, 44, *result.DriverID)
}

func TestService_CalculateServesFromCache(t *testing.T) {
	s := newTestService(t, fixtureTables(t))
	params := Params{DriverID: intp(44), Season: intp(2023)}

	first, err := s.Calculate(context.Background(), "podium_rate", params)
	require.NoError(t, err)

	second, err := s.Calculate(context.Background(), "podium_rate", params)
	require.NoError(t, err)

	// Cached results round-trip through JSON, so compare the fields that
	// matter rather than the dynamic types inside metadata.
	assert.Equal(t, first.MetricName, second.MetricName)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.DriverName, second.DriverName)
}

func TestService_MissingTableYieldsNoResult(t *testing.T) {
	tables := fixtureTables(t)
	delete(tables, dataset.TableQualifying)

	s := newTestService(t, tables)

	result, err := s.Calculate(context.Background(), "qualifying_position_average", Params{DriverID: intp(44)})
	require.NoError(t, err, "unavailable data is a definitive no-result, not an error")

	assert.Nil(t, result.Value)
	assert.Contains(t, result.Metadata, "message")
}

func TestService_MalformedTableYieldsNoResult(t *testing.T) {
	tables := fixtureTables(t)
	// A races row whose year fails numeric coercion is caught during view
	// building rather than CSV parsing; it must degrade the same way as a
	// table that never loaded.
	tables[dataset.TableRaces] = mustTable(t, dataset.TableRaces,
		[]string{"raceId", "year", "round", "circuitId", "name", "date"},
		[][]string{
			{"10", "2022", "1", "1", "Bahrain Grand Prix", "2022-03-20"},
			{"11", `\N`, "1", "1", "Bahrain Grand Prix", "2023-03-05"},
		})

	s := newTestService(t, tables)

	result, err := s.Calculate(context.Background(), "dnf_rate", Params{DriverID: intp(44)})
	require.NoError(t, err, "malformed data is a definitive no-result, not an error")

	assert.Nil(t, result.Value)
	assert.Contains(t, result.Metadata, "message")
	assert.Contains(t, result.Metadata["message"], "data unavailable")
}

func TestService_EmptyDataYieldsNoResult(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	// Driver 99 never raced.
	result, err := s.Calculate(context.Background(), "dnf_rate", Params{DriverID: intp(99)})
	require.NoError(t, err)

	assert.Nil(t, result.Value)
	assert.Contains(t, result.Metadata, "message")
}

func TestService_CalculateBulkPartialFailure(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	names := []string{"dnf_rate", "lap_record_count", "podium_rate", "constructor_win_rate"}

	results, failures := s.CalculateBulk(context.Background(), names, Params{DriverID: intp(44)})

	// dnf_rate and podium_rate succeed; the unknown metric and the
	// constructor metric without a constructor_id fail individually.
	require.Len(t, results, 2)
	require.Len(t, failures, 2)

	assert.Equal(t, "dnf_rate", results[0].MetricName)
	assert.Equal(t, "podium_rate", results[1].MetricName)
	assert.Equal(t, "lap_record_count", failures[0].MetricName)
	assert.NotEmpty(t, failures[0].Message)
	assert.Equal(t, "constructor_win_rate", failures[1].MetricName)
}

func TestService_RaceIDsNarrowSeasonScope(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	// Race 10 is a 2022 race; inside a 2023 scope it contributes nothing.
	result, err := s.Calculate(context.Background(), "points_per_race", Params{
		DriverID: intp(44),
		Season:   intp(2023),
		RaceIDs:  []int{10, 12},
	})
	require.NoError(t, err)

	assert.Equal(t, 26.0, result.Value)
}

func TestResult_Validate(t *testing.T) {
	valid := &Result{
		MetricName: "x",
		Value: map[string]any{
			"ahead":  2,
			"rate":   0.5,
			"races":  []int{1, 2},
			"label":  "ok",
			"absent": nil,
		},
		Metadata: map[string]any{"count": 3},
	}
	require.NoError(t, valid.Validate())

	type opaque struct{ n int }

	invalid := &Result{MetricName: "x", Value: opaque{n: 1}}
	err := invalid.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnserializableValue)

	invalidMeta := &Result{MetricName: "x", Value: 1, Metadata: map[string]any{"f": func() {}}}
	assert.ErrorIs(t, invalidMeta.Validate(), ErrUnserializableValue)
}
