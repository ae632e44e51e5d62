package dataset

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest holds optional overrides mapping logical table names to dataset
// filenames, loaded from .gridstats.yaml. Dataset exports occasionally ship
// with renamed files (lapTimes.csv, pitStops.csv); the manifest lets an
// operator adapt without renaming files on disk.
type Manifest struct {
	// Tables maps a logical table name to its filename within the dataset
	// directory. Key is the logical name, value is the filename.
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	Tables map[string]string `yaml:"tables"`
}

// DefaultManifestPath is the default location for the dataset manifest file.
// Uses hidden file format following common tool conventions (.eslintrc, .prettierrc, etc.).
const DefaultManifestPath = ".gridstats.yaml"

// LoadManifest loads the table-name manifest from a YAML file at the given path.
//
// Behavior:
//   - Returns empty manifest (not error) if file doesn't exist - overrides are optional
//   - Returns empty manifest + logs warning if YAML is invalid (graceful degradation)
//   - Returns populated manifest on success
//
// This graceful degradation ensures the server can start even without a
// manifest configured, as filename overrides are an optional feature.
func LoadManifest(path string) (*Manifest, error) {
	m := &Manifest{Tables: make(map[string]string)}

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Missing file is OK - overrides are optional
			slog.Debug("Dataset manifest not found, using default filenames",
				slog.String("path", path))

			return m, nil
		}

		// Other read errors (permissions, etc.) - log warning and continue
		slog.Warn("Failed to read dataset manifest, using default filenames",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return m, nil
	}

	if len(data) == 0 {
		return m, nil
	}

	if err := yaml.Unmarshal(data, m); err != nil {
		slog.Warn("Failed to parse dataset manifest, using default filenames",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return &Manifest{Tables: make(map[string]string)}, nil
	}

	if m.Tables == nil {
		m.Tables = make(map[string]string)
	}

	return m, nil
}

// FileFor resolves the filename for a logical table name, falling back to the
// "<name>.csv" convention when no override is present.
func (m *Manifest) FileFor(name string) string {
	if m != nil && m.Tables != nil {
		if filename, ok := m.Tables[name]; ok && filename != "" {
			return filename
		}
	}

	return name + ".csv"
}
