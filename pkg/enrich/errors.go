package enrich

import "errors"

// Sentinel errors distinguishing the two enrichment failure modes: the
// model never answered versus the model answered invalidly.
var (
	ErrModelInvocation = errors.New("model invocation failed")
	ErrParseOutput     = errors.New("failed to parse model output")
)
