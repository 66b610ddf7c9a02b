// Package pipeline sequences the extract, enrich, and validate steps
// of a dictionary run.
package pipeline

import (
	"context"

	"go.uber.org/zap"
)

// Decision controls what the machine does after its final step.
type Decision int

const (
	// DecisionStop ends the run.
	DecisionStop Decision = iota
	// DecisionRetry loops back to the retry target step.
	DecisionRetry
)

// StepStatus labels a step transition event.
type StepStatus string

const (
	StepStarted   StepStatus = "started"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Event is an observable step transition. The run store builds its
// execution log from these.
type Event struct {
	Step    string
	Status  StepStatus
	Message string
	Errors  []string
}

// Observer receives step transition events. May be nil.
type Observer func(Event)

// Step is one named unit of work over the shared state.
type Step[S any] struct {
	Name string
	Run  func(ctx context.Context, state *S) error
	// Summary describes a completed step for observers. Optional.
	Summary func(state *S) (message string, errs []string)
}

// Machine executes steps in order. After the final step it consults the
// decide function; DecisionRetry jumps back to the step at retryIndex,
// so the tail of the sequence can cycle a bounded number of times. The
// decide function owns the bound.
type Machine[S any] struct {
	steps      []Step[S]
	decide     func(state *S) Decision
	retryIndex int
	logger     *zap.Logger
}

// NewMachine creates a machine over the given steps. decide is
// consulted after the last step; retryIndex is where DecisionRetry
// resumes.
func NewMachine[S any](steps []Step[S], decide func(state *S) Decision, retryIndex int, logger *zap.Logger) *Machine[S] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine[S]{
		steps:      steps,
		decide:     decide,
		retryIndex: retryIndex,
		logger:     logger.Named("pipeline"),
	}
}

// Run drives the machine to completion. A step error stops the machine
// immediately after emitting a failed event.
func (m *Machine[S]) Run(ctx context.Context, state *S, observer Observer) error {
	start := 0
	for {
		for i := start; i < len(m.steps); i++ {
			step := m.steps[i]

			m.logger.Info("step started", zap.String("step", step.Name))
			emit(observer, Event{Step: step.Name, Status: StepStarted})

			if err := step.Run(ctx, state); err != nil {
				m.logger.Error("step failed",
					zap.String("step", step.Name),
					zap.Error(err))
				emit(observer, Event{
					Step:    step.Name,
					Status:  StepFailed,
					Message: err.Error(),
				})
				return err
			}

			message, errs := "", []string(nil)
			if step.Summary != nil {
				message, errs = step.Summary(state)
			}
			m.logger.Info("step completed",
				zap.String("step", step.Name),
				zap.String("message", message))
			emit(observer, Event{
				Step:    step.Name,
				Status:  StepCompleted,
				Message: message,
				Errors:  errs,
			})
		}

		if m.decide == nil || m.decide(state) != DecisionRetry {
			return nil
		}
		m.logger.Info("looping back", zap.Int("retry_index", m.retryIndex))
		start = m.retryIndex
	}
}

func emit(observer Observer, event Event) {
	if observer != nil {
		observer(event)
	}
}
