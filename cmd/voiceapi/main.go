// Command voiceapi runs the voice-survey transcription service: the widget
// submission endpoint, the dashboard API, and the batch transcription
// pipeline.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/geniuslabs/voiceapi/api"
	"github.com/geniuslabs/voiceapi/auth"
	"github.com/geniuslabs/voiceapi/config"
	"github.com/geniuslabs/voiceapi/database"
	"github.com/geniuslabs/voiceapi/ingest"
	"github.com/geniuslabs/voiceapi/jobs"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/observability"
	"github.com/geniuslabs/voiceapi/resilience"
	"github.com/geniuslabs/voiceapi/server"
	"github.com/geniuslabs/voiceapi/storage"
	"github.com/geniuslabs/voiceapi/transcription"
	"github.com/geniuslabs/voiceapi/transcription/whisper"
	"github.com/geniuslabs/voiceapi/version"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (searched in standard locations when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{"error": err.Error()})
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, cfg.Name)
	log.Info("Starting voiceapi", map[string]interface{}{
		"version":     version.String(),
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Service failed", map[string]interface{}{"error": err.Error()})
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	tracerProvider, err := observability.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		log.Warn("Tracing disabled", map[string]interface{}{"error": err.Error()})
	} else {
		defer func() { _ = tracerProvider.Shutdown(context.Background()) }()
	}

	meterProvider, err := observability.InitMeter(ctx, cfg.Metrics)
	if err != nil {
		log.Warn("Metrics export disabled", map[string]interface{}{"error": err.Error()})
	} else {
		defer func() { _ = meterProvider.Shutdown(context.Background()) }()
	}

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return err
	}

	db, err := database.NewWithContext(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}

	backend, err := storage.New(cfg.Storage)
	if err != nil {
		return err
	}
	audio := storage.NewAudioStore(backend)

	provider := whisper.NewProvider(cfg.Whisper)
	client := transcription.NewClient(provider, audio, cfg.Transcription, log)
	client.SetMetrics(metrics)

	recordings := database.NewRecordingStore(db)
	batches := database.NewBatchStore(db)
	projects := database.NewProjectStore(db)

	// One limiter instance for the whole process: the provider concurrency
	// budget is shared between batch runs and single-recording reprocessing.
	limiter := resilience.NewLimiter(cfg.Jobs.Concurrency)

	processor := jobs.NewProcessor(recordings, client, log)
	processor.SetMetrics(metrics)
	coordinator := jobs.NewCoordinator(recordings, batches, processor, limiter, cfg.Jobs.RatePerMinute, log)
	coordinator.SetMetrics(metrics)
	runner := jobs.NewRunner(log)

	submissions := ingest.NewService(recordings, audio, client, log)
	submissions.SetMetrics(metrics)

	authSvc, err := auth.NewService(cfg.Auth)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	handlers := api.NewHandlers(api.Config{
		Ingest:      submissions,
		Processor:   processor,
		Coordinator: coordinator,
		Runner:      runner,
		Limiter:     limiter,
		Projects:    projects,
		Recordings:  recordings,
		Batches:     batches,
		Checkers: []observability.HealthChecker{
			dbChecker{db: db},
			storageChecker{backend: backend},
		},
		Version: version.String(),
		Log:     log,
	})
	handlers.Register(srv.GinEngine(), authSvc)

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	if err := srv.Stop(context.Background()); err != nil {
		log.Error("Server shutdown error", map[string]interface{}{"error": err.Error()})
	}
	// Let in-flight batch runs and reprocess jobs finish their writes.
	runner.Wait()
	return nil
}

type dbChecker struct {
	db *database.DB
}

func (c dbChecker) CheckHealth(ctx context.Context) observability.Health {
	if err := c.db.PingContext(ctx); err != nil {
		return observability.Health{Name: "database", Status: observability.HealthStatusDown, Message: err.Error()}
	}
	return observability.Health{Name: "database", Status: observability.HealthStatusUp}
}

type storageChecker struct {
	backend storage.Storage
}

func (c storageChecker) CheckHealth(ctx context.Context) observability.Health {
	if _, err := c.backend.List(ctx, "projects"); err != nil {
		return observability.Health{Name: "storage", Status: observability.HealthStatusDegraded, Message: err.Error()}
	}
	return observability.Health{Name: "storage", Status: observability.HealthStatusUp}
}
