package api

import (
	"github.com/gridstats-io/gridstats/internal/metriccache"
	"github.com/gridstats-io/gridstats/internal/metrics"
)

type (
	// MetricRequest is the request body for single and bulk metric
	// calculation. All parameters are optional at the transport level;
	// the metric's kind decides which identity parameter is required.
	MetricRequest struct {
		DriverID      *int  `json:"driverId,omitempty"`
		ConstructorID *int  `json:"constructorId,omitempty"`
		Season        *int  `json:"season,omitempty"`
		RaceIDs       []int `json:"raceIds,omitempty"`
	}

	// BulkRequest is the request body for bulk metric calculation: several
	// metric names evaluated against one parameter set.
	BulkRequest struct {
		Metrics []string      `json:"metrics"`
		Params  MetricRequest `json:"params"`
	}

	// BulkResponse carries partial results plus per-metric errors. One bad
	// metric name never sinks the rest of the batch.
	BulkResponse struct {
		Results []*metrics.Result   `json:"results"`
		Errors  []metrics.BulkError `json:"errors"`
	}

	// CacheClearResponse reports the outcome of a cache clear operation.
	CacheClearResponse struct {
		Metric  string `json:"metric,omitempty"`
		Cleared int    `json:"cleared"`
	}

	// AvailableResponse lists the metric catalog grouped by kind.
	AvailableResponse struct {
		Driver      []metrics.Description `json:"driver"`
		Constructor []metrics.Description `json:"constructor"`
	}

	// DriverInfo is one row of the driver reference listing.
	DriverInfo struct {
		ID   int    `json:"id"`
		Ref  string `json:"ref,omitempty"`
		Name string `json:"name"`
	}

	// ConstructorInfo is one row of the constructor reference listing.
	ConstructorInfo struct {
		ID   int    `json:"id"`
		Ref  string `json:"ref,omitempty"`
		Name string `json:"name"`
	}

	// RaceInfo is one row of the race calendar listing.
	RaceInfo struct {
		ID      int    `json:"id"`
		Year    int    `json:"year"`
		Round   int    `json:"round"`
		Name    string `json:"name"`
		Circuit int    `json:"circuitId,omitempty"`
		Date    string `json:"date,omitempty"`
	}

	// HealthStatus represents the health check response structure.
	HealthStatus struct {
		Status      string             `json:"status"`
		ServiceName string             `json:"serviceName"`
		Version     string             `json:"version"`
		Uptime      string             `json:"uptime,omitempty"`
		Cache       *metriccache.Stats `json:"cache,omitempty"`
	}
)
