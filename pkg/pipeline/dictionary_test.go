package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens-engine/pkg/models"
	"github.com/schemalens/schemalens-engine/pkg/validate"
)

type stubExtractor struct {
	schema models.Schema
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context) (models.Schema, error) {
	s.calls++
	return s.schema, s.err
}

type stubEnricher struct {
	fn    func(raw models.Schema, previousErrors []string) (models.Schema, error)
	calls int
	seen  [][]string
}

func (s *stubEnricher) Enrich(ctx context.Context, raw models.Schema, previousErrors []string) (models.Schema, error) {
	s.calls++
	s.seen = append(s.seen, previousErrors)
	return s.fn(raw, previousErrors)
}

func twoColumnSchema() models.Schema {
	return models.Schema{
		"users": {
			TableName: "users",
			Columns: map[string]*models.ColumnMetadata{
				"id":    {Name: "id", OriginalType: "INTEGER"},
				"email": {Name: "email", OriginalType: "TEXT"},
			},
		},
	}
}

// dropColumn returns a deep-enough copy of s with one column removed.
func dropColumn(s models.Schema, table, column string) models.Schema {
	out := models.Schema{}
	for name, t := range s {
		clone := t.Clone()
		out[name] = clone
	}
	delete(out[table].Columns, column)
	return out
}

func TestDictionary_HappyPath(t *testing.T) {
	raw := twoColumnSchema()
	extractor := &stubExtractor{schema: raw}
	enricher := &stubEnricher{fn: func(in models.Schema, _ []string) (models.Schema, error) {
		return in, nil
	}}

	var steps []string
	d := NewDictionary(&DictionaryConfig{Extractor: extractor, Enricher: enricher})
	state := NewState("sqlite:data/demo.db")
	err := d.Run(context.Background(), state, func(e Event) {
		if e.Status == StepCompleted {
			steps = append(steps, e.Step)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, []string{StepExtract, StepEnrich, StepValidate}, steps)
	assert.Equal(t, validate.StatusPassed, state.ValidationStatus)
	assert.Empty(t, state.Errors)
	assert.Equal(t, 0, state.RetryCount)
	assert.Equal(t, raw, state.SchemaEnriched)
}

func TestDictionary_RetriesUntilGatePasses(t *testing.T) {
	raw := twoColumnSchema()
	extractor := &stubExtractor{schema: raw}
	enricher := &stubEnricher{}
	enricher.fn = func(in models.Schema, _ []string) (models.Schema, error) {
		// First attempt drops a column, the retry restores it.
		if enricher.calls == 1 {
			return dropColumn(in, "users", "email"), nil
		}
		return in, nil
	}

	d := NewDictionary(&DictionaryConfig{Extractor: extractor, Enricher: enricher})
	state := NewState("")
	err := d.Run(context.Background(), state, nil)
	require.NoError(t, err)

	// Extraction never reruns; enrichment cycles through the retry edge.
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, 2, enricher.calls)
	assert.Equal(t, validate.StatusPassed, state.ValidationStatus)
	assert.Empty(t, state.Errors)

	// The retry attempt receives the validation feedback.
	require.Len(t, enricher.seen, 2)
	assert.Empty(t, enricher.seen[0])
	require.Len(t, enricher.seen[1], 1)
	assert.Contains(t, enricher.seen[1][0], "missing columns: email")
}

func TestDictionary_RetriesExhausted(t *testing.T) {
	raw := twoColumnSchema()
	extractor := &stubExtractor{schema: raw}
	enricher := &stubEnricher{fn: func(in models.Schema, _ []string) (models.Schema, error) {
		return dropColumn(in, "users", "email"), nil
	}}

	d := NewDictionary(&DictionaryConfig{Extractor: extractor, Enricher: enricher, MaxRetries: 2})
	state := NewState("")
	err := d.Run(context.Background(), state, nil)
	require.NoError(t, err)

	assert.Equal(t, validate.StatusFailed, state.ValidationStatus)
	assert.Equal(t, 2, state.RetryCount)
	// Initial attempt plus one retry.
	assert.Equal(t, 2, enricher.calls)
	assert.NotEmpty(t, state.Errors)
}

func TestDictionary_ExtractErrorStopsPipeline(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("dial tcp: connection refused")}
	enricher := &stubEnricher{fn: func(in models.Schema, _ []string) (models.Schema, error) {
		return in, nil
	}}

	d := NewDictionary(&DictionaryConfig{Extractor: extractor, Enricher: enricher})
	err := d.Run(context.Background(), NewState(""), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract:")
	assert.Equal(t, 0, enricher.calls)
}

func TestDictionary_EnrichErrorStopsWithoutRetry(t *testing.T) {
	extractor := &stubExtractor{schema: twoColumnSchema()}
	enricher := &stubEnricher{fn: func(in models.Schema, _ []string) (models.Schema, error) {
		return nil, errors.New("model unavailable")
	}}

	d := NewDictionary(&DictionaryConfig{Extractor: extractor, Enricher: enricher})
	state := NewState("")
	err := d.Run(context.Background(), state, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrich:")
	// Hard step errors do not consume the validation retry budget.
	assert.Equal(t, 1, enricher.calls)
	assert.Equal(t, validate.StatusPending, state.ValidationStatus)
}

func TestDictionary_ValidateSummaryCarriesErrors(t *testing.T) {
	extractor := &stubExtractor{schema: twoColumnSchema()}
	enricher := &stubEnricher{fn: func(in models.Schema, _ []string) (models.Schema, error) {
		return dropColumn(in, "users", "email"), nil
	}}

	var failures []Event
	d := NewDictionary(&DictionaryConfig{Extractor: extractor, Enricher: enricher, MaxRetries: 1})
	err := d.Run(context.Background(), NewState(""), func(e Event) {
		if e.Step == StepValidate && e.Status == StepCompleted && len(e.Errors) > 0 {
			failures = append(failures, e)
		}
	})
	require.NoError(t, err)

	require.NotEmpty(t, failures)
	assert.Contains(t, failures[0].Message, "validation failed (attempt 1)")
	assert.Contains(t, failures[0].Errors[0], "missing columns: email")
}
