// Package runstore keeps an in-memory, session-partitioned registry of
// pipeline runs.
package runstore

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/apperrors"
	"github.com/schemalens/schemalens-engine/pkg/models"
)

// Store holds runs partitioned by session. A run is mutated in place by
// its executing pipeline until terminal, then becomes read-only; all
// access goes through the store's lock.
type Store struct {
	mu     sync.RWMutex
	runs   map[string]map[string]*models.Run // session -> run_id -> run
	logger *zap.Logger
}

// NewStore creates an empty run store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		runs:   make(map[string]map[string]*models.Run),
		logger: logger.Named("runstore"),
	}
}

// Start registers a new running run under the session and returns it.
// The run is visible to Get and List as soon as Start returns.
func (s *Store) Start(runID, sessionID, connectionDescriptor string) *models.Run {
	run := &models.Run{
		RunID:                runID,
		SessionID:            sessionID,
		Status:               models.RunStatusRunning,
		CreatedAt:            time.Now().UTC(),
		ConnectionDescriptor: connectionDescriptor,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runs[sessionID] == nil {
		s.runs[sessionID] = make(map[string]*models.Run)
	}
	s.runs[sessionID][runID] = run

	s.logger.Info("run started",
		zap.String("run_id", runID),
		zap.String("session_id", sessionID))
	return run
}

// Get returns the run by id. The session is checked first; since run
// ids are globally unique, an empty or wrong session falls back to
// searching all sessions.
func (s *Store) Get(runID, sessionID string) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sessionRuns, ok := s.runs[sessionID]; ok {
		if run, ok := sessionRuns[runID]; ok {
			return run, nil
		}
	}
	for _, sessionRuns := range s.runs {
		if run, ok := sessionRuns[runID]; ok {
			return run, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// List returns the session's runs, most recent first.
func (s *Store) List(sessionID string) []*models.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionRuns := s.runs[sessionID]
	out := make([]*models.Run, 0, len(sessionRuns))
	for _, run := range sessionRuns {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Clear removes all runs for the session.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, sessionID)

	s.logger.Info("session cleared", zap.String("session_id", sessionID))
}

// AppendLog appends a log entry to the run's pipeline log.
func (s *Store) AppendLog(runID, sessionID string, entry models.PipelineLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.findLocked(runID, sessionID)
	if run == nil {
		return
	}
	run.PipelineLog = append(run.PipelineLog, entry)
}

// Complete transitions the run to a terminal status and attaches the
// final artifacts. Transitions are monotonic; a terminal run is never
// modified again.
func (s *Store) Complete(runID, sessionID string, status models.RunStatus, schema models.Schema, errs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.findLocked(runID, sessionID)
	if run == nil || run.Status != models.RunStatusRunning {
		return
	}
	run.Status = status
	run.SchemaEnriched = schema
	run.Errors = errs

	s.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.String("status", string(status)))
}

func (s *Store) findLocked(runID, sessionID string) *models.Run {
	if sessionRuns, ok := s.runs[sessionID]; ok {
		if run, ok := sessionRuns[runID]; ok {
			return run
		}
	}
	for _, sessionRuns := range s.runs {
		if run, ok := sessionRuns[runID]; ok {
			return run
		}
	}
	return nil
}
