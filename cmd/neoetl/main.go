// Command neoetl runs the close-approach assessment pipeline: it pages the
// NeoWs feed over the configured date window, assesses every close approach,
// and writes the results to the configured sinks. Optional side jobs export
// fireball events and meteorite landings after the main run.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/orbitwatch/neo-hazard-etl/internal/adapter/fireball"
	httpadapter "github.com/orbitwatch/neo-hazard-etl/internal/adapter/http"
	kafkaadapter "github.com/orbitwatch/neo-hazard-etl/internal/adapter/kafka"
	"github.com/orbitwatch/neo-hazard-etl/internal/adapter/neows"
	"github.com/orbitwatch/neo-hazard-etl/internal/adapter/sbdb"
	"github.com/orbitwatch/neo-hazard-etl/internal/adapter/socrata"
	"github.com/orbitwatch/neo-hazard-etl/internal/config"
	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
	"github.com/orbitwatch/neo-hazard-etl/internal/observability"
	"github.com/orbitwatch/neo-hazard-etl/internal/pipeline"
	"github.com/orbitwatch/neo-hazard-etl/internal/sink"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("service error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	feedClient := neows.NewClient(cfg.NASAAPIKey, cfg.NeoWsBaseURL, cfg.APITimeout, logger, metrics)
	extractor := neows.NewFeedExtractor(feedClient, cfg.WindowStart, cfg.WindowStop, cfg.ChunkDays)

	// SBDB MOID enrichment (feature-flagged via SBDB_ENABLED).
	var moidSource domain.MOIDSource
	if cfg.SBDBEnabled {
		client := sbdb.NewClient(cfg.SBDBBaseURL, cfg.APITimeout, logger, metrics)
		moidSource = sbdb.NewCachedSource(client, cfg.SBDBCacheSize, metrics)
		metrics.SBDBEnrichment.Set(1)
		logger.Info("sbdb moid enrichment enabled", "cache_size", cfg.SBDBCacheSize)
	} else {
		logger.Info("sbdb moid enrichment disabled")
	}

	assessor := pipeline.NewAssessor(moidSource, domain.AssessOptions{
		DensityKgM3:       cfg.DensityKgM3,
		TargetDensityKgM3: cfg.TargetDensityKgM3,
		MOIDThresholdAU:   cfg.MOIDThresholdAU,
	}, logger)

	csvWriter, err := sink.NewCSVWriter(cfg.HazardCSVPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := csvWriter.Close(); err != nil {
			logger.Error("csv sink close error", "error", err)
		}
	}()

	loaders := []pipeline.BatchLoader{csvWriter}
	if cfg.KafkaEnabled {
		kafkaWriter := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := kafkaWriter.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, kafkaWriter)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(extractor, assessor, loaders, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	pipelineErr := p.Run(ctx)

	if pipelineErr == nil && ctx.Err() == nil {
		runSideJobs(ctx, cfg, logger)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return pipelineErr
}

// runSideJobs exports the fireball and meteorite datasets after a successful
// pipeline run. Failures are logged, not fatal: the hazard assessments are
// already on disk.
func runSideJobs(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	if cfg.FireballEnabled {
		client := fireball.NewClient(cfg.FireballBaseURL, cfg.APITimeout, logger)
		events, err := client.Fetch(ctx, cfg.FireballLimit)
		if err != nil {
			logger.Error("fireball export failed", "error", err)
		} else if err := sink.WriteFireballGeoJSON(cfg.FireballGeoJSONPath, events); err != nil {
			logger.Error("fireball geojson write failed", "error", err)
		} else {
			logger.Info("fireball events exported", "count", len(events), "path", cfg.FireballGeoJSONPath)
		}
	}

	if cfg.MeteoriteEnabled {
		client := socrata.NewClient(cfg.SocrataBaseURL, cfg.SocrataAppToken, cfg.APITimeout, logger)
		records, err := client.FetchMeteorites(ctx, cfg.MeteoriteLimit)
		if err != nil {
			logger.Error("meteorite export failed", "error", err)
		} else if err := sink.WriteMeteoriteCSV(cfg.MeteoriteCSVPath, records); err != nil {
			logger.Error("meteorite csv write failed", "error", err)
		} else {
			logger.Info("meteorite landings exported", "count", len(records), "path", cfg.MeteoriteCSVPath)
		}
	}
}
