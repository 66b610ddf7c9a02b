package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/models"
	"github.com/schemalens/schemalens-engine/pkg/validate"
)

// Step names exposed in pipeline logs.
const (
	StepExtract  = "extract"
	StepEnrich   = "enrich"
	StepValidate = "validate"
)

// SchemaExtractor produces the ground-truth schema for a database.
type SchemaExtractor interface {
	Extract(ctx context.Context) (models.Schema, error)
}

// SchemaEnricher layers semantic metadata onto an extracted schema.
// previousErrors carries validation feedback from a failed attempt.
type SchemaEnricher interface {
	Enrich(ctx context.Context, raw models.Schema, previousErrors []string) (models.Schema, error)
}

// Dictionary wires the extract, enrich, and validate steps into a
// machine with a bounded validate-to-enrich retry edge.
type Dictionary struct {
	machine *Machine[State]
}

// DictionaryConfig holds dependencies for building a dictionary pipeline.
type DictionaryConfig struct {
	Extractor  SchemaExtractor
	Enricher   SchemaEnricher
	MaxRetries int // validation retry ceiling, default 3
	Logger     *zap.Logger
}

// NewDictionary builds the dictionary pipeline. Extraction runs exactly
// once per invocation; enrichment and validation may cycle until the
// gate passes or the retry ceiling is reached.
func NewDictionary(cfg *DictionaryConfig) *Dictionary {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	steps := []Step[State]{
		{
			Name: StepExtract,
			Run: func(ctx context.Context, state *State) error {
				schema, err := cfg.Extractor.Extract(ctx)
				if err != nil {
					return fmt.Errorf("extract: %w", err)
				}
				state.SchemaRaw = schema
				return nil
			},
			Summary: func(state *State) (string, []string) {
				return fmt.Sprintf("extracted %d tables", len(state.SchemaRaw)), nil
			},
		},
		{
			Name: StepEnrich,
			Run: func(ctx context.Context, state *State) error {
				enriched, err := cfg.Enricher.Enrich(ctx, state.SchemaRaw, state.Errors)
				if err != nil {
					return fmt.Errorf("enrich: %w", err)
				}
				state.SchemaEnriched = enriched
				return nil
			},
			Summary: func(state *State) (string, []string) {
				return fmt.Sprintf("enriched %d tables", len(state.SchemaEnriched)), nil
			},
		},
		{
			Name: StepValidate,
			Run: func(ctx context.Context, state *State) error {
				result := validate.Check(state.SchemaRaw, state.SchemaEnriched, state.RetryCount)
				state.ValidationStatus = result.Status
				state.Errors = result.Errors
				state.RetryCount = result.RetryCount
				return nil
			},
			Summary: func(state *State) (string, []string) {
				if state.ValidationStatus == validate.StatusPassed {
					return "validation passed", nil
				}
				return fmt.Sprintf("validation failed (attempt %d): %s",
					state.RetryCount, strings.Join(state.Errors, "; ")), state.Errors
			},
		},
	}

	decide := func(state *State) Decision {
		if state.ValidationStatus == validate.StatusFailed && state.RetryCount < maxRetries {
			return DecisionRetry
		}
		return DecisionStop
	}

	return &Dictionary{
		// Retries re-enter at the enrich step, extraction never reruns.
		machine: NewMachine(steps, decide, 1, logger),
	}
}

// Run executes one dictionary run over the state.
func (d *Dictionary) Run(ctx context.Context, state *State, observer Observer) error {
	return d.machine.Run(ctx, state, observer)
}
