// Package api wires the HTTP routes: the widget submission endpoint, the
// dashboard endpoints, and health.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/geniuslabs/voiceapi/auth"
	"github.com/geniuslabs/voiceapi/database"
	"github.com/geniuslabs/voiceapi/ingest"
	"github.com/geniuslabs/voiceapi/jobs"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/observability"
	"github.com/geniuslabs/voiceapi/resilience"
	"github.com/geniuslabs/voiceapi/server/middleware"
)

// Submitter handles one live widget submission. Satisfied by ingest.Service.
type Submitter interface {
	Submit(ctx context.Context, req ingest.SubmitRequest) (*ingest.SubmitResult, error)
}

// JobProcessor transcribes one stored recording. Satisfied by jobs.Processor.
type JobProcessor interface {
	Process(ctx context.Context, id uuid.UUID) (*jobs.Result, error)
}

// BatchCoordinator drives a batch to its terminal status. Satisfied by
// jobs.Coordinator.
type BatchCoordinator interface {
	RunBatch(ctx context.Context, batchID uuid.UUID) error
}

// ProjectStore is the project lookup surface the routes need. Satisfied by
// database.ProjectStore.
type ProjectStore interface {
	Get(ctx context.Context, id uuid.UUID) (*database.Project, error)
	GetByPublicKey(ctx context.Context, publicKey string) (*database.Project, error)
}

// RecordingStore is the recording lookup surface the routes need. Satisfied
// by database.RecordingStore.
type RecordingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*database.Recording, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (*database.RecordingCounts, error)
}

// BatchStore is the batch lookup surface the routes need. Satisfied by
// database.BatchStore.
type BatchStore interface {
	Get(ctx context.Context, id uuid.UUID) (*database.Batch, error)
}

// Handlers bundles the route handlers and their dependencies.
type Handlers struct {
	ingest      Submitter
	processor   JobProcessor
	coordinator BatchCoordinator
	runner      *jobs.Runner
	limiter     *resilience.Limiter
	projects    ProjectStore
	recordings  RecordingStore
	batches     BatchStore
	checkers    []observability.HealthChecker
	version     string
	log         *logger.Logger
}

// Config collects everything Handlers needs.
type Config struct {
	Ingest      Submitter
	Processor   JobProcessor
	Coordinator BatchCoordinator
	Runner      *jobs.Runner
	Limiter     *resilience.Limiter
	Projects    ProjectStore
	Recordings  RecordingStore
	Batches     BatchStore
	Checkers    []observability.HealthChecker
	Version     string
	Log         *logger.Logger
}

// NewHandlers creates the route handlers.
func NewHandlers(cfg Config) *Handlers {
	return &Handlers{
		ingest:      cfg.Ingest,
		processor:   cfg.Processor,
		coordinator: cfg.Coordinator,
		runner:      cfg.Runner,
		limiter:     cfg.Limiter,
		projects:    cfg.Projects,
		recordings:  cfg.Recordings,
		batches:     cfg.Batches,
		checkers:    cfg.Checkers,
		version:     cfg.Version,
		log:         cfg.Log.WithComponent("api"),
	}
}

// Register attaches all routes to the engine. Widget routes authenticate via
// the X-Project-Key header; dashboard routes require a Bearer token.
func (h *Handlers) Register(engine *gin.Engine, authSvc *auth.Service) {
	engine.GET("/health", h.Health)

	api := engine.Group("/api")
	api.GET("/health", h.Health)

	widget := api.Group("", middleware.ProjectKey(h.projects))
	widget.POST("/transcribe", h.Transcribe)

	dashboard := api.Group("", middleware.Auth(authSvc))
	dashboard.GET("/projects/:id", h.GetProject)
	dashboard.POST("/batches/:id/process", h.ProcessBatch)
	dashboard.POST("/recordings/:id/reprocess", h.ReprocessRecording)
}
