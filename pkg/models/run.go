package models

import "time"

// RunStatus tracks a pipeline run's lifecycle. Transitions are monotonic:
// running -> completed or running -> failed, never back.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineLogEntry records one observed node transition for caller
// visibility into retry behavior.
type PipelineLogEntry struct {
	Step    string   `json:"step"`
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// Run is one end-to-end pipeline execution. It has a single writer (the
// executing pipeline) until it reaches a terminal status, then becomes
// read-only.
type Run struct {
	RunID                string             `json:"run_id"`
	SessionID            string             `json:"session_id"`
	Status               RunStatus          `json:"status"`
	CreatedAt            time.Time          `json:"created_at"`
	ConnectionDescriptor string             `json:"-"`
	SchemaEnriched       Schema             `json:"schema_enriched,omitempty"`
	PipelineLog          []PipelineLogEntry `json:"pipeline_log"`
	Errors               []string           `json:"errors"`
}
