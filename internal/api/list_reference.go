package api

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/gridstats-io/gridstats/internal/api/middleware"
	"github.com/gridstats-io/gridstats/internal/dataset"
)

// handleListDrivers handles GET /api/v1/drivers.
// Returns every driver in the dataset sorted by id. The listing exists so
// API consumers can discover the identifiers the metric endpoints expect.
func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	t, err := s.store.Load(ctx, dataset.TableDrivers)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load drivers table",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, ServiceUnavailable("Driver listing is unavailable"))

		return
	}

	drivers := make([]DriverInfo, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		id, ok := row.Int("driverId")
		if !ok {
			continue
		}

		name := row.Text("forename")
		if surname := row.Text("surname"); surname != "" {
			if name != "" {
				name += " "
			}

			name += surname
		}

		drivers = append(drivers, DriverInfo{
			ID:   id,
			Ref:  row.Text("driverRef"),
			Name: name,
		})
	}

	sort.Slice(drivers, func(i, j int) bool { return drivers[i].ID < drivers[j].ID })

	s.writeJSON(w, r, http.StatusOK, drivers)
}

// handleListConstructors handles GET /api/v1/constructors.
func (s *Server) handleListConstructors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	t, err := s.store.Load(ctx, dataset.TableConstructors)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load constructors table",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, ServiceUnavailable("Constructor listing is unavailable"))

		return
	}

	constructors := make([]ConstructorInfo, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		id, ok := row.Int("constructorId")
		if !ok {
			continue
		}

		constructors = append(constructors, ConstructorInfo{
			ID:   id,
			Ref:  row.Text("constructorRef"),
			Name: row.Text("name"),
		})
	}

	sort.Slice(constructors, func(i, j int) bool { return constructors[i].ID < constructors[j].ID })

	s.writeJSON(w, r, http.StatusOK, constructors)
}

// handleListRaces handles GET /api/v1/races.
// Returns the race calendar sorted by year and round, optionally filtered
// to one season. Seasons below the configured floor are never listed.
//
// Query Parameters:
//   - season: four-digit year (optional)
func (s *Server) handleListRaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var season *int

	if raw := r.URL.Query().Get("season"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			WriteErrorResponse(w, r, s.logger, BadRequest("Invalid parameter 'season': must be a valid integer"))

			return
		}

		season = &year
	}

	races, err := s.builder.Races(ctx, season)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build race calendar",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, ServiceUnavailable("Race listing is unavailable"))

		return
	}

	infos := make([]RaceInfo, 0, len(races))
	for _, race := range races {
		infos = append(infos, RaceInfo{
			ID:      race.ID,
			Year:    race.Year,
			Round:   race.Round,
			Name:    race.Name,
			Circuit: race.Circuit,
			Date:    race.Date,
		})
	}

	s.writeJSON(w, r, http.StatusOK, infos)
}
