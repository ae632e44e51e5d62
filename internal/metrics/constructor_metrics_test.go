package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorMetric_ChampionshipPositionSingleSeason(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_championship_position", Params{ConstructorID: intp(131), Season: intp(2023)})

	// Final standing is the last round's row, not a recomputed sum.
	assert.Equal(t, 1, result.Value)
	assert.Equal(t, 69.0, result.Metadata["points"])
	assert.Equal(t, "Mercedes", result.ConstructorName)
}

func TestConstructorMetric_ChampionshipPositionAllSeasons(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_championship_position", Params{ConstructorID: intp(9)})

	value, ok := result.Value.(map[string]any)
	require.True(t, ok)

	assert.Equal(t, 2, value["2022"])
	assert.Equal(t, 2, value["2023"])
}

func TestConstructorMetric_ChampionshipWins(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_championship_wins", Params{ConstructorID: intp(131)})

	assert.Equal(t, 2, result.Value)
}

func TestConstructorMetric_PointsPerSeason(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_points_per_season", Params{ConstructorID: intp(131)})

	// Season-end points 43 and 69.
	assert.Equal(t, 56.0, result.Value)
}

func TestConstructorMetric_PointsPerRace(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_points_per_race", Params{ConstructorID: intp(131)})

	// Team points 43, 25, 44 across three races.
	assert.Equal(t, 37.333, result.Value)
}

func TestConstructorMetric_WinRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_win_rate", Params{ConstructorID: intp(131)})

	assert.Equal(t, 1.0, result.Value)
	assert.Equal(t, 3, result.Metadata["wins"])
}

func TestConstructorMetric_RaceWinsNeedsBothCars(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_race_wins", Params{ConstructorID: intp(131)})

	// Races 10 and 12 are 1-2 finishes; race 11 had one car retire, so a
	// lone win does not count as a 1-2.
	assert.Equal(t, 2, result.Value)
}

func TestConstructorMetric_PodiumLockouts(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_podium_lockouts", Params{ConstructorID: intp(131)})

	assert.Equal(t, 2, result.Value)
}

func TestConstructorMetric_RaceWinStreak(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_race_win_streak", Params{ConstructorID: intp(131)})

	assert.Equal(t, 3, result.Value)
}

func TestConstructorMetric_DNFRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_dnf_rate", Params{ConstructorID: intp(9)})

	// One retirement across six car entries.
	assert.Equal(t, 0.167, result.Value)
	assert.Equal(t, 1, result.Metadata["dnfs"])
}

func TestConstructorMetric_FinishRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_finish_rate", Params{ConstructorID: intp(9)})

	assert.Equal(t, 0.833, result.Value)
}

func TestConstructorMetric_MechanicalFailureRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	// Verstappen's 2022 retirement was an engine failure; Russell's 2023
	// retirement was a collision and must not count for Red Bull or as
	// mechanical anywhere.
	redBull := calculate(t, s, "constructor_mechanical_failure_rate", Params{ConstructorID: intp(9)})
	assert.Equal(t, 0.167, redBull.Value)
	assert.Equal(t, 1, redBull.Metadata["mechanical_failures"])

	mercedes := calculate(t, s, "constructor_mechanical_failure_rate", Params{ConstructorID: intp(131)})
	assert.Equal(t, 0.0, mercedes.Value)
}

func TestConstructorMetric_AverageQualifyingPosition(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_average_qualifying_position", Params{ConstructorID: intp(9)})

	// Sessions 1, 3, 1, 2, 3, 4.
	assert.Equal(t, 2.333, result.Value)
}

func TestConstructorMetric_PolePositionRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_pole_position_rate", Params{ConstructorID: intp(9)})

	// Two poles over three race weekends.
	assert.Equal(t, 0.667, result.Value)
	assert.Equal(t, 3, result.Metadata["races"])
}

func TestConstructorMetric_FrontRowStartRate(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	result := calculate(t, s, "constructor_front_row_start_rate", Params{ConstructorID: intp(131)})

	// Positions 2, 4, 3, unset, 1, 2: three front rows over six entries.
	assert.Equal(t, 0.5, result.Value)
}

func TestConstructorMetric_PitStops(t *testing.T) {
	s := newTestService(t, fixtureTables(t))
	p := Params{ConstructorID: intp(131)}

	average := calculate(t, s, "constructor_average_pit_stop_time", p)
	assert.Equal(t, 16.405, average.Value)

	fastest := calculate(t, s, "constructor_fastest_pit_stop", p)
	assert.Equal(t, 2.9, fastest.Value)

	subThree := calculate(t, s, "constructor_sub_three_second_stops", p)
	assert.Equal(t, 1, subThree.Value)

	perRace := calculate(t, s, "constructor_average_pit_stops_per_race", p)
	assert.Equal(t, 1.5, perRace.Value)
}

func TestConstructorMetric_LapTimes(t *testing.T) {
	s := newTestService(t, fixtureTables(t))
	p := Params{ConstructorID: intp(131)}

	average := calculate(t, s, "constructor_average_lap_time", p)
	assert.Equal(t, 90.773, average.Value)

	fastest := calculate(t, s, "constructor_fastest_lap", p)
	assert.Equal(t, 90.501, fastest.Value)
}

func TestConstructorMetric_NoDataYieldsNoResult(t *testing.T) {
	s := newTestService(t, fixtureTables(t))

	// Constructor 6 never raced in the fixture.
	result := calculate(t, s, "constructor_win_rate", Params{ConstructorID: intp(6)})

	assert.Nil(t, result.Value)
	assert.Contains(t, result.Metadata, "message")
}
