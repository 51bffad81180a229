package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	batchhandler "github.com/aliskhannn/media-exporter/internal/api/handlers/batch"
	"github.com/aliskhannn/media-exporter/internal/api/router"
	"github.com/aliskhannn/media-exporter/internal/api/server"
	"github.com/aliskhannn/media-exporter/internal/config"
	"github.com/aliskhannn/media-exporter/internal/decode"
	"github.com/aliskhannn/media-exporter/internal/geometry"
	"github.com/aliskhannn/media-exporter/internal/infra/kafka/consumer"
	"github.com/aliskhannn/media-exporter/internal/infra/kafka/producer"
	exportmsg "github.com/aliskhannn/media-exporter/internal/kafka/handlers/export"
	"github.com/aliskhannn/media-exporter/internal/mediaprofile"
	"github.com/aliskhannn/media-exporter/internal/model"
	"github.com/aliskhannn/media-exporter/internal/pipeline"
	batchrepo "github.com/aliskhannn/media-exporter/internal/repository/batch"
	exportsvc "github.com/aliskhannn/media-exporter/internal/service/export"
	"github.com/aliskhannn/media-exporter/internal/storage/file"
	"github.com/aliskhannn/media-exporter/internal/subject"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config")

	// Connect to PostgreSQL (master and slaves).
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Retry strategy for Kafka and other external calls.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Initialize object storage (MinIO).
	storage, err := file.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.BucketName, cfg.Storage.UseSSL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
	}

	// Media profile table: built-in entries plus any extension from config.
	catalog := mediaprofile.Default()
	for _, e := range cfg.Export.Profiles {
		catalog.Set(e.Profile, model.Category(e.Category), model.TargetSize{Width: e.Width, Height: e.Height})
	}

	// Pose capability is optional. When it cannot be loaded, staff images
	// fall back to centered crops instead of subject framing.
	var pose subject.PoseEstimator
	if cfg.Pose.ServiceURL != "" {
		p, err := subject.NewHTTPEstimator(cfg.Pose.ServiceURL)
		if err != nil {
			zlog.Logger.Error().Err(err).Msg("pose capability unavailable, subject framing disabled")
		} else {
			pose = p
		}
	} else {
		zlog.Logger.Info().Msg("no pose service configured, subject framing disabled")
	}

	solver := geometry.NewSolver(subject.NewFrameEstimator(pose))
	exportPipeline := pipeline.New(catalog, solver, cfg.Export.Workers)

	// HEIC decoding requires an external collaborator; without one, HEIC
	// uploads are rejected per-asset while other formats keep working.
	decoder := decode.New(nil)

	// Initialize repository, producer, and service layer.
	repo := batchrepo.NewRepository(db)
	p := producer.New(&cfg.Kafka, strategy)
	service := exportsvc.NewService(storage, p, repo, exportPipeline, decoder, solver, catalog, cfg.Export.Quality)

	// Kafka message handler for requested exports.
	requestedHandler := exportmsg.NewRequestedHandler(service)

	// HTTP handler for batch routes.
	handler := batchhandler.NewHandler(service)

	// Kafka consumer for processing export jobs.
	c := consumer.New(&cfg.Kafka, strategy, requestedHandler)

	// Start Kafka consumer in a separate goroutine.
	var wg sync.WaitGroup
	wg.Add(1)
	go c.Consume(ctx, &wg)

	// Start HTTP server in a separate goroutine.
	r := router.Setup(handler)
	s := server.New(cfg.Server.HTTPPort, r)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for Kafka consumer goroutine to finish.
	wg.Wait()

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Close master and slave databases.
	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}
	for i, slave := range db.Slaves {
		if err := slave.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}
}
