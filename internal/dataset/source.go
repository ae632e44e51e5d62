package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source loads a raw table from its backing resource. Implementations must
// treat tables as all-or-nothing: a partially readable resource is a
// malformed table, never a truncated one.
type Source interface {
	// Load reads the named table. It fails with ErrTableNotFound when the
	// backing resource is absent and ErrMalformedTable when the resource
	// cannot be parsed into a uniform schema.
	Load(ctx context.Context, name string) (*RawTable, error)
}

// CSVSource loads tables from a directory of CSV exports, one file per
// logical table. The header row is the schema; every data row must match it.
type CSVSource struct {
	dir      string
	manifest *Manifest
}

// NewCSVSource creates a CSV-backed source rooted at dir. The manifest maps
// logical table names to filenames; pass nil to use the default
// "<name>.csv" convention.
func NewCSVSource(dir string, manifest *Manifest) *CSVSource {
	if manifest == nil {
		manifest = &Manifest{}
	}

	return &CSVSource{dir: dir, manifest: manifest}
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context, name string) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, s.manifest.FileFor(name))

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrTableNotFound, name, path)
		}

		return nil, fmt.Errorf("open table %s: %w", name, err)
	}

	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: table %q is empty", ErrMalformedTable, name)
		}

		return nil, fmt.Errorf("%w: table %q header: %v", ErrMalformedTable, name, err)
	}

	var rows [][]string

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			// encoding/csv reports ragged rows as ErrFieldCount; both that
			// and quoting errors violate the fixed-schema contract.
			return nil, fmt.Errorf("%w: table %q: %v", ErrMalformedTable, name, err)
		}

		rows = append(rows, record)
	}

	return NewRawTable(name, header, rows)
}
