package enrich

import (
	"sort"
	"strings"

	"github.com/schemalens/schemalens-engine/pkg/models"
)

// ColumnEnrichment is the per-column payload the model returns. Nil
// pointer fields were absent from the output and leave the ground-truth
// value untouched.
type ColumnEnrichment struct {
	Description   *string  `json:"description"`
	Tags          []string `json:"tags"`
	BusinessLogic *string  `json:"business_logic"`
	PotentialPII  *bool    `json:"potential_pii"`
}

// TableEnrichment is the per-table payload the model returns.
type TableEnrichment struct {
	Columns map[string]ColumnEnrichment `json:"columns"`
}

// MergeEnrichment overlays model output onto deep copies of the
// ground-truth schema. Table names are matched case-insensitively
// against raw keys; when several raw keys collide under case folding,
// the lexicographically first one wins. Columns unknown to the ground
// truth are dropped here, the validation gate reports them. Returns the
// merged schema and the table names that had no ground-truth match.
func MergeEnrichment(raw models.Schema, parsed map[string]TableEnrichment) (models.Schema, []string) {
	rawKeys := make([]string, 0, len(raw))
	for key := range raw {
		rawKeys = append(rawKeys, key)
	}
	sort.Strings(rawKeys)

	merged := make(models.Schema)
	var skipped []string

	for tableName, enrichment := range parsed {
		rawKey, ok := matchTableKey(rawKeys, tableName)
		if !ok {
			skipped = append(skipped, tableName)
			continue
		}

		table := raw[rawKey].Clone()
		for colName, colEnrichment := range enrichment.Columns {
			col, ok := table.Columns[colName]
			if !ok {
				continue
			}
			if colEnrichment.Description != nil {
				col.Description = colEnrichment.Description
			}
			if colEnrichment.BusinessLogic != nil {
				col.BusinessLogic = colEnrichment.BusinessLogic
			}
			if colEnrichment.PotentialPII != nil {
				col.PotentialPII = *colEnrichment.PotentialPII
			}
			if colEnrichment.Tags != nil {
				col.Tags = colEnrichment.Tags
			}
		}
		merged[rawKey] = table
	}

	sort.Strings(skipped)
	return merged, skipped
}

func matchTableKey(sortedRawKeys []string, tableName string) (string, bool) {
	lower := strings.ToLower(tableName)
	for _, key := range sortedRawKeys {
		if strings.ToLower(key) == lower {
			return key, true
		}
	}
	return "", false
}
