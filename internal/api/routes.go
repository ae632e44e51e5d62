package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gridstats-io/gridstats/internal/api/middleware"
	"github.com/gridstats-io/gridstats/internal/metriccache"
)

const (
	serviceName    = "gridstats"
	serviceVersion = "v1.0.0" // TODO: inject version at build time once release tooling exists

	// Timeout for the dataset probe behind /ready.
	readinessTimeout = 2 * time.Second

	// Table probed by the readiness check. Every view joins against it,
	// so if it cannot be loaded nothing else will work either.
	readinessTable = "races"
)

// setupRoutes registers all HTTP routes on the provided mux.
// Uses Go 1.22+ method-specific routing patterns.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health and readiness probes
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Metric calculation
	mux.HandleFunc("GET /api/v1/metrics/available", s.handleAvailableMetrics)
	mux.HandleFunc("POST /api/v1/metrics/bulk", s.handleBulkMetrics)
	mux.HandleFunc("POST /api/v1/metrics/{name}", s.handleCalculateMetric)

	// Cache administration
	mux.HandleFunc("GET /api/v1/cache/stats", s.handleCacheStats)
	mux.HandleFunc("DELETE /api/v1/cache", s.handleCacheClear)

	// Reference data listings
	mux.HandleFunc("GET /api/v1/drivers", s.handleListDrivers)
	mux.HandleFunc("GET /api/v1/constructors", s.handleListConstructors)
	mux.HandleFunc("GET /api/v1/races", s.handleListRaces)

	// Catch-all for unmatched paths
	mux.HandleFunc("/", s.handleNotFound)
}

// handlePing responds to ping requests for basic server validation.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("X-Gridstats-Version", serviceVersion)
	w.WriteHeader(http.StatusOK)

	_, err := w.Write([]byte("pong"))
	if err != nil {
		s.logger.Error("Failed to write ping response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// handleReady responds to readiness probes with a dataset backend check.
//
// Response codes:
//   - 200 OK: the dataset backend can serve tables
//   - 503 Service Unavailable: the dataset backend is unreachable or the
//     probe table cannot be loaded
//
// Orchestrators use this endpoint to decide whether the instance should
// receive traffic. The probe loads the races table because every view
// joins against it; a cached copy answers immediately, a cold start
// exercises the real backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if _, err := s.store.Load(ctx, readinessTable); err != nil {
		s.logger.Error("Dataset readiness check failed",
			slog.String("correlation_id", correlationID),
			slog.String("table", readinessTable),
			slog.String("error", err.Error()),
		)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)

		_, writeErr := w.Write([]byte("dataset unavailable"))
		if writeErr != nil {
			s.logger.Error("Failed to write unavailable response",
				slog.String("correlation_id", correlationID),
				slog.String("error", writeErr.Error()),
			)
		}

		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write([]byte("ready"))
	if err != nil {
		s.logger.Error("Failed to write ready response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// handleHealth returns detailed health status information, including
// uptime and cache statistics.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// Calculate uptime if server has started
	var uptime string

	if !s.startTime.IsZero() {
		duration := time.Since(s.startTime)
		uptime = duration.Round(time.Second).String()
	}

	var cacheStats *metriccache.Stats

	if s.cache != nil {
		stats := s.cache.Stats()
		cacheStats = &stats
	}

	health := HealthStatus{
		Status:      "healthy",
		ServiceName: serviceName,
		Version:     serviceVersion,
		Uptime:      uptime,
		Cache:       cacheStats,
	}

	w.Header().Set("X-Gridstats-Version", serviceVersion)
	s.writeJSON(w, r, http.StatusOK, health)
}

// handleNotFound returns RFC 7807 compliant 404 responses for unknown endpoints.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, s.logger, NotFound("The requested resource was not found"))
}

// writeJSON marshals payload and writes it with the given status code.
// Marshal failures degrade to an RFC 7807 500 before any headers are sent.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		correlationID := middleware.GetCorrelationID(r.Context())
		s.logger.Error("Failed to marshal response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(data); err != nil {
		correlationID := middleware.GetCorrelationID(r.Context())
		s.logger.Error("Failed to write response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// hasJSONContentType checks if Content-Type header starts with "application/json".
// This allows charset parameters (e.g., "application/json; charset=utf-8").
func hasJSONContentType(contentType string) bool {
	return strings.HasPrefix(strings.TrimSpace(contentType), "application/json")
}
