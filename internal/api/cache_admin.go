package api

import (
	"log/slog"
	"net/http"

	"github.com/gridstats-io/gridstats/internal/api/middleware"
)

// handleCacheStats handles GET /api/v1/cache/stats.
// Returns cache configuration plus entry counts and on-disk size.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.cache.Stats())
}

// handleCacheClear handles DELETE /api/v1/cache.
// Without a metric query parameter it purges every cached entry; with
// one it removes only the entries cached for that metric.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	metric := r.URL.Query().Get("metric")

	cleared, err := s.cache.Clear(metric)
	if err != nil {
		s.logger.ErrorContext(ctx, "Cache clear failed",
			slog.String("correlation_id", correlationID),
			slog.String("metric", metric),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to clear cache"))

		return
	}

	s.logger.InfoContext(ctx, "Cache cleared",
		slog.String("correlation_id", correlationID),
		slog.String("metric", metric),
		slog.Int("cleared", cleared),
	)

	s.writeJSON(w, r, http.StatusOK, CacheClearResponse{Metric: metric, Cleared: cleared})
}
