// Package validate checks an enriched schema against extracted ground
// truth by column-key set equality.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schemalens/schemalens-engine/pkg/models"
)

// Status is the outcome of a validation pass.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPassed  Status = "PASSED"
	StatusFailed  Status = "FAILED"
)

// Result carries the gate's verdict and the updated retry count.
type Result struct {
	Status     Status
	Errors     []string
	RetryCount int
}

// Check compares raw and enriched schemas. It is a pure function with
// no side effects and accumulates every violation rather than stopping
// at the first. Only column-key sets are compared, never semantic field
// values. On failure the retry count is incremented; on success errors
// are cleared.
func Check(raw, enriched models.Schema, retryCount int) Result {
	var errs []string

	if len(raw) != len(enriched) {
		errs = append(errs, fmt.Sprintf(
			"table count mismatch: expected %d, got %d", len(raw), len(enriched)))
	}

	rawTables := sortedKeys(raw)
	for _, tableName := range rawTables {
		if _, ok := enriched[tableName]; !ok {
			errs = append(errs, fmt.Sprintf("missing table: %s", tableName))
		}
	}

	for _, tableName := range rawTables {
		enrichedTable, ok := enriched[tableName]
		if !ok {
			continue
		}
		rawTable := raw[tableName]

		missing := columnDifference(rawTable, enrichedTable)
		extra := columnDifference(enrichedTable, rawTable)

		if len(missing) > 0 {
			errs = append(errs, fmt.Sprintf(
				"table %s: missing columns: %s", tableName, strings.Join(missing, ", ")))
		}
		if len(extra) > 0 {
			errs = append(errs, fmt.Sprintf(
				"table %s: unexpected columns: %s", tableName, strings.Join(extra, ", ")))
		}
	}

	if len(errs) > 0 {
		return Result{
			Status:     StatusFailed,
			Errors:     errs,
			RetryCount: retryCount + 1,
		}
	}
	return Result{
		Status:     StatusPassed,
		RetryCount: retryCount,
	}
}

// columnDifference returns columns present in a but not in b, sorted.
func columnDifference(a, b *models.TableSchema) []string {
	var diff []string
	for name := range a.Columns {
		if _, ok := b.Columns[name]; !ok {
			diff = append(diff, name)
		}
	}
	sort.Strings(diff)
	return diff
}

func sortedKeys(s models.Schema) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
