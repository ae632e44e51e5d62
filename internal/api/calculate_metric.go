package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gridstats-io/gridstats/internal/api/middleware"
	"github.com/gridstats-io/gridstats/internal/metrics"
)

// toParams maps the API request body to domain calculation parameters.
// The mapping is deliberately explicit so the wire format and the domain
// type can drift independently.
func (m MetricRequest) toParams() metrics.Params {
	return metrics.Params{
		DriverID:      m.DriverID,
		ConstructorID: m.ConstructorID,
		Season:        m.Season,
		RaceIDs:       m.RaceIDs,
	}
}

// handleCalculateMetric handles POST /api/v1/metrics/{name}.
// Calculates a single metric for the parameters given in the request body.
//
// Request validation (returns 4xx):
//   - 415 Unsupported Media Type: non-empty body without application/json
//   - 413 Payload Too Large: request body exceeds MaxRequestSize
//   - 400 Bad Request: malformed JSON or missing required identity parameter
//   - 404 Not Found: unknown metric name
//
// An empty body is accepted and means "no parameters": season-scoped
// metrics then cover every season from the configured floor onward.
func (s *Server) handleCalculateMetric(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	name := r.PathValue("name")
	if name == "" {
		WriteErrorResponse(w, r, s.logger, BadRequest("Metric name is required"))

		return
	}

	req, problem := s.parseMetricRequest(w, r)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	result, err := s.service.Calculate(ctx, name, req.toParams())
	if err != nil {
		s.writeMetricError(w, r, name, err)

		return
	}

	s.logger.InfoContext(ctx, "Metric calculated",
		slog.String("correlation_id", correlationID),
		slog.String("metric", name),
	)

	s.writeJSON(w, r, http.StatusOK, result)
}

// handleBulkMetrics handles POST /api/v1/metrics/bulk.
// Calculates several metrics against a single parameter set. Individual
// metric failures are reported per metric and never abort the batch.
//
// Success responses:
//   - 200 OK: every requested metric produced a result
//   - 207 Multi-Status: some metrics failed, results are partial
//   - 422 Unprocessable Entity: every requested metric failed
func (s *Server) handleBulkMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	if !hasJSONContentType(r.Header.Get("Content-Type")) {
		WriteErrorResponse(w, r, s.logger, UnsupportedMediaType("Content-Type must be application/json"))

		return
	}

	body, problem := s.readRequestBody(w, r)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	var req BulkRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("Invalid JSON in request body"))

		return
	}

	if len(req.Metrics) == 0 {
		WriteErrorResponse(w, r, s.logger, BadRequest("At least one metric name is required"))

		return
	}

	results, bulkErrors := s.service.CalculateBulk(ctx, req.Metrics, req.Params.toParams())

	s.logger.InfoContext(ctx, "Bulk metrics calculated",
		slog.String("correlation_id", correlationID),
		slog.Int("requested", len(req.Metrics)),
		slog.Int("succeeded", len(results)),
		slog.Int("failed", len(bulkErrors)),
	)

	status := http.StatusOK

	switch {
	case len(results) == 0 && len(bulkErrors) > 0:
		status = http.StatusUnprocessableEntity
	case len(bulkErrors) > 0:
		status = http.StatusMultiStatus
	}

	s.writeJSON(w, r, status, BulkResponse{Results: results, Errors: bulkErrors})
}

// handleAvailableMetrics handles GET /api/v1/metrics/available.
// Returns the metric catalog grouped by kind, sorted by name.
func (s *Server) handleAvailableMetrics(w http.ResponseWriter, r *http.Request) {
	available := s.service.Registry().Available()

	s.writeJSON(w, r, http.StatusOK, AvailableResponse{
		Driver:      available[metrics.KindDriver],
		Constructor: available[metrics.KindConstructor],
	})
}

// parseMetricRequest reads and decodes the optional parameter body.
// A missing or empty body yields zero-value parameters.
func (s *Server) parseMetricRequest(w http.ResponseWriter, r *http.Request) (MetricRequest, *ProblemDetail) {
	var req MetricRequest

	body, problem := s.readRequestBody(w, r)
	if problem != nil {
		return req, problem
	}

	if len(body) == 0 {
		return req, nil
	}

	if !hasJSONContentType(r.Header.Get("Content-Type")) {
		return req, UnsupportedMediaType("Content-Type must be application/json")
	}

	if err := json.Unmarshal(body, &req); err != nil {
		return req, BadRequest("Invalid JSON in request body")
	}

	return req, nil
}

// readRequestBody reads the request body with the configured size cap.
func (s *Server) readRequestBody(w http.ResponseWriter, r *http.Request) ([]byte, *ProblemDetail) {
	limited := http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	body, err := io.ReadAll(limited)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, NewProblemDetail(
				http.StatusRequestEntityTooLarge,
				"Payload Too Large",
				"Request body exceeds the maximum allowed size",
			)
		}

		return nil, BadRequest("Failed to read request body")
	}

	return body, nil
}

// writeMetricError maps calculation errors to RFC 7807 responses.
// Unknown metrics map to 404, parameter problems to 400, everything
// else is an internal fault.
func (s *Server) writeMetricError(w http.ResponseWriter, r *http.Request, name string, err error) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	switch {
	case errors.Is(err, metrics.ErrUnknownMetric):
		WriteErrorResponse(w, r, s.logger, NotFound("Unknown metric: "+name))
	case errors.Is(err, metrics.ErrInvalidParameter):
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))
	default:
		s.logger.ErrorContext(ctx, "Metric calculation failed",
			slog.String("correlation_id", correlationID),
			slog.String("metric", name),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Metric calculation failed"))
	}
}
