package pipeline

import (
	"github.com/schemalens/schemalens-engine/pkg/models"
	"github.com/schemalens/schemalens-engine/pkg/validate"
)

// State is the run-scoped record shared across pipeline steps. Each
// step writes only the fields it owns: extraction writes SchemaRaw
// once, enrichment overwrites SchemaEnriched per attempt, validation
// owns Errors, RetryCount, and ValidationStatus.
type State struct {
	ConnectionDescriptor string
	SchemaRaw            models.Schema
	SchemaEnriched       models.Schema
	Errors               []string
	RetryCount           int
	ValidationStatus     validate.Status
}

// NewState creates the initial state for one run.
func NewState(connectionDescriptor string) *State {
	return &State{
		ConnectionDescriptor: connectionDescriptor,
		ValidationStatus:     validate.StatusPending,
	}
}
