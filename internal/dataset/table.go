// Package dataset provides loading and caching of the raw relational tables
// (races, results, qualifying, lap times, pit stops, drivers, constructors,
// standings, status codes) that every derived view is built from.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Logical table names. A logical name maps to a backing resource (a CSV file
// or a SQL table) through the configured Source.
const (
	TableRaces                = "races"
	TableResults              = "results"
	TableQualifying           = "qualifying"
	TableLapTimes             = "lap_times"
	TablePitStops             = "pit_stops"
	TableDrivers              = "drivers"
	TableConstructors         = "constructors"
	TableConstructorStandings = "constructor_standings"
	TableStatus               = "status"
)

// nullLiteral is the NULL sentinel used by the dataset export format.
const nullLiteral = `\N`

var (
	// ErrTableNotFound is returned when the backing resource for a table is absent.
	ErrTableNotFound = errors.New("dataset table not found")
	// ErrMalformedTable is returned when a backing resource cannot be parsed
	// into the declared schema (missing header, ragged rows, duplicate columns).
	ErrMalformedTable = errors.New("malformed dataset table")
)

type (
	// RawTable is a named, ordered collection of rows with a fixed column
	// schema. Tables are immutable once loaded; all mutation is eviction
	// through Store.Clear.
	RawTable struct {
		Name    string
		Columns []string

		rows  [][]string
		index map[string]int
	}

	// Row is a cursor over a single table row. Cell accessors coerce values
	// on demand and report missing or non-numeric cells through their ok
	// result instead of failing.
	Row struct {
		table *RawTable
		cells []string
	}
)

// NewRawTable builds a table from a header and row data, validating that the
// schema is usable: non-empty unique column names and uniform row arity.
func NewRawTable(name string, columns []string, rows [][]string) (*RawTable, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table %q has no columns", ErrMalformedTable, name)
	}

	index := make(map[string]int, len(columns))

	for i, col := range columns {
		col = strings.TrimSpace(col)
		if col == "" {
			return nil, fmt.Errorf("%w: table %q has an empty column name at position %d", ErrMalformedTable, name, i)
		}

		if _, dup := index[col]; dup {
			return nil, fmt.Errorf("%w: table %q has duplicate column %q", ErrMalformedTable, name, col)
		}

		columns[i] = col
		index[col] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: table %q row %d has %d cells, schema has %d columns",
				ErrMalformedTable, name, i, len(row), len(columns))
		}
	}

	return &RawTable{
		Name:    name,
		Columns: columns,
		rows:    rows,
		index:   index,
	}, nil
}

// Len returns the number of rows in the table.
func (t *RawTable) Len() int {
	return len(t.rows)
}

// Row returns a cursor for the i-th row. The cursor is a cheap value type and
// safe to copy; it never outlives the table's immutable backing data.
func (t *RawTable) Row(i int) Row {
	return Row{table: t, cells: t.rows[i]}
}

// HasColumn reports whether the table schema declares the given column.
func (t *RawTable) HasColumn(col string) bool {
	_, ok := t.index[col]

	return ok
}

// Text returns the raw cell value for col, with the dataset NULL literal and
// unknown columns normalized to the empty string.
func (r Row) Text(col string) string {
	i, ok := r.table.index[col]
	if !ok {
		return ""
	}

	v := r.cells[i]
	if v == nullLiteral {
		return ""
	}

	return v
}

// Int coerces the cell for col to an integer. Missing columns, NULL literals,
// and non-numeric sentinels ("Ret", "DNF", era-specific markers) all coerce
// to (0, false) rather than failing: a false ok on a position column is the
// canonical DNF signal.
func (r Row) Int(col string) (int, bool) {
	v := r.Text(col)
	if v == "" {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}

	return n, true
}

// Float coerces the cell for col to a float64, with the same null semantics
// as Int.
func (r Row) Float(col string) (float64, bool) {
	v := r.Text(col)
	if v == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

// FloatOr coerces the cell for col to a float64, substituting fallback for
// null or unparseable cells. Used for columns like points where the dataset
// means "zero" when it writes nothing.
func (r Row) FloatOr(col string, fallback float64) float64 {
	f, ok := r.Float(col)
	if !ok {
		return fallback
	}

	return f
}
