package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calculate(t *testing.T, s *Service, name string, p Params) *Result {
	t.Helper()

	result, err := s.Calculate(context.Background(), name, p)
	require.NoError(t, err)

	return result
}

func TestDriverMetric_AverageFinishPosition(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "average_finish_position", Params{DriverID: intp(63)})

	// Positions 2, DNF, 2: the DNF is excluded from the average but
	// counted as an entry.
	assert.Equal(t, 2.0, result.Value)
	assert.Equal(t, 3, result.Metadata["races_entered"])
	assert.Equal(t, 2, result.Metadata["finishes"])
}

func TestDriverMetric_DNFRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "dnf_rate", Params{DriverID: intp(63)})

	assert.Equal(t, 0.333, result.Value)
	assert.Equal(t, 1, result.Metadata["dnfs"])
}

func TestDriverMetric_DNFRateSeasonScoped(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "dnf_rate", Params{DriverID: intp(33), Season: intp(2023)})

	// The 2022 retirement is outside the scope.
	assert.Equal(t, 0.0, result.Value)
}

func TestDriverMetric_PodiumRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "podium_rate", Params{DriverID: intp(44)})

	assert.Equal(t, 1.0, result.Value)
	assert.Equal(t, 3, result.Metadata["podiums"])
}

func TestDriverMetric_QualifyingPositionAverage(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "qualifying_position_average", Params{DriverID: intp(44)})

	// Sessions 2, 3, 1.
	assert.Equal(t, 2.0, result.Value)
	assert.Equal(t, 3, result.Metadata["sessions"])
}

func TestDriverMetric_QualifyingConsistency(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "qualifying_consistency", Params{DriverID: intp(44)})

	// Population stddev of {2, 3, 1}.
	assert.Equal(t, 0.816, result.Value)
}

func TestDriverMetric_PolePositionRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "pole_position_rate", Params{DriverID: intp(33)})

	// Poles in two of three sessions.
	assert.Equal(t, 0.667, result.Value)
	assert.Equal(t, 2, result.Metadata["poles"])
}

func TestDriverMetric_QualifyingSkipsUnsetSessions(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "qualifying_position_average", Params{DriverID: intp(63)})

	// Sessions 4, unset, 2: the null position is dropped from the mean.
	assert.Equal(t, 3.0, result.Value)
	assert.Equal(t, 2, result.Metadata["sessions"])
}

func TestDriverMetric_TeammateQualifyingComparison(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "teammate_qualifying_comparison", Params{DriverID: intp(44)})

	value, ok := result.Value.(map[string]any)
	require.True(t, ok)

	// Race 10: 2 vs 4, race 12: 1 vs 2. Race 11 has no teammate time.
	assert.Equal(t, 2, value["ahead"])
	assert.Equal(t, 0, value["behind"])
	assert.Equal(t, 1.0, value["ahead_rate"])
}

func TestDriverMetric_TeammateRaceComparison(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "teammate_race_comparison", Params{DriverID: intp(63)})

	value, ok := result.Value.(map[string]any)
	require.True(t, ok)

	// Races 10 and 12 are comparable; 63 finished behind 44 in both. The
	// race 11 DNF drops out of the comparison.
	assert.Equal(t, 0, value["ahead"])
	assert.Equal(t, 2, value["behind"])
	assert.Equal(t, 2, value["races"])
}
