// Package services contains the application-facing operations built on
// the extraction, enrichment, and run registry layers.
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
	"github.com/schemalens/schemalens-engine/pkg/config"
	"github.com/schemalens/schemalens-engine/pkg/extract"
	"github.com/schemalens/schemalens-engine/pkg/logging"
	"github.com/schemalens/schemalens-engine/pkg/models"
	"github.com/schemalens/schemalens-engine/pkg/pipeline"
	"github.com/schemalens/schemalens-engine/pkg/validate"
)

// RunStore is the registry the service records runs in.
type RunStore interface {
	Start(runID, sessionID, connectionDescriptor string) *models.Run
	Get(runID, sessionID string) (*models.Run, error)
	List(sessionID string) []*models.Run
	Clear(sessionID string)
	AppendLog(runID, sessionID string, entry models.PipelineLogEntry)
	Complete(runID, sessionID string, status models.RunStatus, schema models.Schema, errs []string)
}

// PipelineService executes dictionary runs and exposes the run registry.
type PipelineService struct {
	store    RunStore
	factory  datasource.ConnectorFactory
	enricher pipeline.SchemaEnricher
	cfg      *config.Config
	logger   *zap.Logger
}

// NewPipelineService creates the pipeline service.
func NewPipelineService(store RunStore, factory datasource.ConnectorFactory, enricher pipeline.SchemaEnricher, cfg *config.Config, logger *zap.Logger) *PipelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineService{
		store:    store,
		factory:  factory,
		enricher: enricher,
		cfg:      cfg,
		logger:   logger.Named("pipeline-service"),
	}
}

// maxErrorMessageLength caps stored run failure messages. Driver and
// model errors can embed entire response bodies.
const maxErrorMessageLength = 500

// newRunID returns a short opaque run token.
func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Execute runs the full pipeline synchronously and returns the terminal
// run record.
func (s *PipelineService) Execute(ctx context.Context, sessionID string) (*models.Run, error) {
	run := s.store.Start(newRunID(), sessionID, logging.SanitizeDSN(s.cfg.Database.DSN))
	s.run(ctx, run)
	return s.store.Get(run.RunID, sessionID)
}

// Start registers a run, launches the pipeline in the background, and
// returns the run id immediately. Progress is observable through Get.
func (s *PipelineService) Start(ctx context.Context, sessionID string) string {
	run := s.store.Start(newRunID(), sessionID, logging.SanitizeDSN(s.cfg.Database.DSN))
	go s.run(context.WithoutCancel(ctx), run)
	return run.RunID
}

// GetRun returns a run by id, searching across sessions if needed.
func (s *PipelineService) GetRun(runID, sessionID string) (*models.Run, error) {
	return s.store.Get(runID, sessionID)
}

// ListRuns returns the session's runs, most recent first.
func (s *PipelineService) ListRuns(sessionID string) []*models.Run {
	return s.store.List(sessionID)
}

// ClearRuns removes all runs for the session.
func (s *PipelineService) ClearRuns(sessionID string) {
	s.store.Clear(sessionID)
}

// run drives one pipeline execution and records its outcome.
func (s *PipelineService) run(ctx context.Context, run *models.Run) {
	extractor := extract.NewExtractor(&extract.Config{
		Factory:          s.factory,
		Dialect:          s.cfg.Database.Dialect,
		DSN:              s.cfg.Database.DSN,
		Workers:          s.cfg.Pipeline.ProfileWorkers,
		StatementTimeout: s.cfg.Pipeline.StatementTimeout(),
		Logger:           s.logger,
	})

	dict := pipeline.NewDictionary(&pipeline.DictionaryConfig{
		Extractor:  extractor,
		Enricher:   s.enricher,
		MaxRetries: s.cfg.Pipeline.MaxRetries,
		Logger:     s.logger,
	})

	observer := func(event pipeline.Event) {
		s.store.AppendLog(run.RunID, run.SessionID, models.PipelineLogEntry{
			Step:    event.Step,
			Status:  string(event.Status),
			Message: event.Message,
			Errors:  event.Errors,
		})
	}

	state := pipeline.NewState(logging.SanitizeDSN(s.cfg.Database.DSN))
	if err := dict.Run(ctx, state, observer); err != nil {
		// Driver errors can echo the DSN back; scrub before recording.
		msg := logging.TruncateString(logging.SanitizeError(err), maxErrorMessageLength)
		s.logger.Error("pipeline run failed",
			zap.String("run_id", run.RunID),
			zap.String("error", msg))
		s.store.Complete(run.RunID, run.SessionID, models.RunStatusFailed, nil, []string{msg})
		return
	}

	if state.ValidationStatus == validate.StatusPassed {
		s.store.Complete(run.RunID, run.SessionID, models.RunStatusCompleted, state.SchemaEnriched, nil)
		return
	}
	s.store.Complete(run.RunID, run.SessionID, models.RunStatusFailed, state.SchemaEnriched, state.Errors)
}
