package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// pgUndefinedTable is the PostgreSQL error code for a missing relation.
const pgUndefinedTable = "42P01"

// knownTables whitelists the logical table names a SQLSource will query.
// Table names cannot be bound as query parameters, so the whitelist is what
// keeps the identifier interpolation safe.
var knownTables = map[string]bool{
	TableRaces:                true,
	TableResults:              true,
	TableQualifying:           true,
	TableLapTimes:             true,
	TablePitStops:             true,
	TableDrivers:              true,
	TableConstructors:         true,
	TableConstructorStandings: true,
	TableStatus:               true,
}

// SQLSource loads the dataset tables from PostgreSQL. Every column is read
// as text so that CSV-backed and SQL-backed stores feed byte-identical
// RawTables into the view builder.
type SQLSource struct {
	conn *Connection
}

// NewSQLSource creates a PostgreSQL-backed source over an open connection.
func NewSQLSource(conn *Connection) *SQLSource {
	return &SQLSource{conn: conn}
}

// Load implements Source.
func (s *SQLSource) Load(ctx context.Context, name string) (*RawTable, error) {
	if !knownTables[name] {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT * FROM `+pq.QuoteIdentifier(name))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUndefinedTable {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}

		return nil, fmt.Errorf("query table %s: %w", name, err)
	}

	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: table %q columns: %v", ErrMalformedTable, name, err)
	}

	var data [][]string

	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		scan := make([]any, len(columns))

		for i := range cells {
			scan[i] = &cells[i]
		}

		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("%w: table %q: %v", ErrMalformedTable, name, err)
		}

		record := make([]string, len(columns))

		for i, cell := range cells {
			if cell.Valid {
				record[i] = cell.String
			} else {
				// Match the CSV export's NULL literal so Row coercion
				// behaves identically across backends.
				record[i] = nullLiteral
			}
		}

		data = append(data, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query table %s: %w", name, err)
	}

	return NewRawTable(name, columns, data)
}
