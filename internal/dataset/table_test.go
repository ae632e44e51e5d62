package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawTable_Valid(t *testing.T) {
	table, err := NewRawTable("results",
		[]string{"resultId", "raceId", "position", "points"},
		[][]string{
			{"1", "18", "1", "10"},
			{"2", "18", `\N`, "0"},
		},
	)

	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.True(t, table.HasColumn("position"))
	assert.False(t, table.HasColumn("positionText"))
}

func TestNewRawTable_RaggedRows(t *testing.T) {
	_, err := NewRawTable("results",
		[]string{"resultId", "raceId"},
		[][]string{{"1", "18", "extra"}},
	)

	require.ErrorIs(t, err, ErrMalformedTable)
}

func TestNewRawTable_DuplicateColumn(t *testing.T) {
	_, err := NewRawTable("results",
		[]string{"raceId", "raceId"},
		nil,
	)

	require.ErrorIs(t, err, ErrMalformedTable)
}

func TestNewRawTable_EmptyColumnName(t *testing.T) {
	_, err := NewRawTable("results",
		[]string{"raceId", "  "},
		nil,
	)

	require.ErrorIs(t, err, ErrMalformedTable)
}

func TestRowCoercion(t *testing.T) {
	table, err := NewRawTable("results",
		[]string{"position", "points", "positionText", "milliseconds"},
		[][]string{
			{"3", "15", "3", "5421312"},
			{`\N`, "0", "R", `\N`},
			{"Ret", "", "Ret", "junk"},
		},
	)
	require.NoError(t, err)

	// Classified finisher coerces cleanly.
	pos, ok := table.Row(0).Int("position")
	require.True(t, ok)
	assert.Equal(t, 3, pos)

	ms, ok := table.Row(0).Float("milliseconds")
	require.True(t, ok)
	assert.InDelta(t, 5421312.0, ms, 0.001)

	// NULL literal coerces to a missing marker, never an error.
	_, ok = table.Row(1).Int("position")
	assert.False(t, ok)
	assert.Empty(t, table.Row(1).Text("position"))

	// Non-numeric sentinels ("Ret") coerce to missing as well.
	_, ok = table.Row(2).Int("position")
	assert.False(t, ok)
	_, ok = table.Row(2).Float("milliseconds")
	assert.False(t, ok)

	// FloatOr substitutes the fallback for null cells.
	assert.InDelta(t, 0.0, table.Row(2).FloatOr("points", 0), 0.001)
	assert.InDelta(t, 15.0, table.Row(0).FloatOr("points", 0), 0.001)
}

func TestRowUnknownColumn(t *testing.T) {
	table, err := NewRawTable("races", []string{"raceId"}, [][]string{{"1"}})
	require.NoError(t, err)

	assert.Empty(t, table.Row(0).Text("year"))

	_, ok := table.Row(0).Int("year")
	assert.False(t, ok)
}
