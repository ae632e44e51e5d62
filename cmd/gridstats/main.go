// Package main provides the gridstats metrics service.
//
// The service builds relational views over a Formula 1 results dataset
// and serves derived driver and constructor performance metrics over HTTP,
// with a TTL file cache in front of the calculations.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/gridstats-io/gridstats/internal/api"
	"github.com/gridstats-io/gridstats/internal/api/middleware"
	"github.com/gridstats-io/gridstats/internal/dataset"
	"github.com/gridstats-io/gridstats/internal/metriccache"
	"github.com/gridstats-io/gridstats/internal/metrics"
	"github.com/gridstats-io/gridstats/internal/views"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "gridstats"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	serverConfig := api.LoadServerConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: serverConfig.LogLevel,
	}))

	logger.Info("Starting gridstats service",
		slog.String("service", name),
		slog.String("version", version),
	)

	logger.Info("Loaded server configuration",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.Duration("read_timeout", serverConfig.ReadTimeout),
		slog.Duration("write_timeout", serverConfig.WriteTimeout),
		slog.Duration("shutdown_timeout", serverConfig.ShutdownTimeout),
		slog.String("log_level", serverConfig.LogLevel.String()),
	)

	// Rate limiter (graceful shutdown handled by server.shutdown())
	middlewareConfig := middleware.LoadConfig()
	rateLimiter := middleware.NewInMemoryRateLimiter(middlewareConfig)

	logger.Info("Rate limiter initialized",
		slog.Int("global_rps", middlewareConfig.GlobalRPS),
		slog.Int("global_burst", middlewareConfig.GlobalBurst),
		slog.Int("client_rps", middlewareConfig.ClientRPS),
		slog.Int("client_burst", middlewareConfig.ClientBurst),
	)

	// Dataset backend selection
	datasetConfig := dataset.LoadConfig()
	if err := datasetConfig.Validate(); err != nil {
		logger.Error("Invalid dataset configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var source dataset.Source

	switch datasetConfig.Backend {
	case dataset.BackendCSV:
		manifest, err := dataset.LoadManifest(datasetConfig.ManifestPath)
		if err != nil {
			logger.Error("Failed to load dataset manifest",
				slog.String("path", datasetConfig.ManifestPath),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}

		source = dataset.NewCSVSource(datasetConfig.Dir, manifest)

		logger.Info("Dataset backend initialized",
			slog.String("backend", dataset.BackendCSV),
			slog.String("dir", datasetConfig.Dir),
			slog.String("manifest", datasetConfig.ManifestPath),
		)
	case dataset.BackendPostgres:
		sqlConfig := dataset.LoadSQLConfig()

		conn, err := dataset.NewConnection(sqlConfig)
		if err != nil {
			logger.Error("Failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		defer func() {
			_ = conn.Close()
		}()

		source = dataset.NewSQLSource(conn)

		logger.Info("Dataset backend initialized",
			slog.String("backend", dataset.BackendPostgres),
			slog.String("database_url", sqlConfig.MaskDatabaseURL()),
		)
	}

	store := dataset.NewStore(source, logger)

	viewConfig := views.LoadConfig()
	builder := views.NewBuilder(store, viewConfig, logger)

	logger.Info("View builder initialized",
		slog.Int("min_season", viewConfig.MinSeason),
	)

	cacheConfig := metriccache.LoadConfig()
	cache := metriccache.New(cacheConfig, logger)

	logger.Info("Metric cache initialized",
		slog.Bool("enabled", cache.Enabled()),
		slog.Duration("ttl", cacheConfig.TTL),
		slog.String("dir", cacheConfig.Dir),
	)

	registry := metrics.NewRegistry()
	service := metrics.NewService(registry, builder, cache, logger)

	logger.Info("Metric registry initialized",
		slog.Int("metrics", registry.Len()),
	)

	server := api.NewServer(serverConfig, service, cache, builder, store, rateLimiter)

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("gridstats service stopped")
}
