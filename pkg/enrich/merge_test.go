package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens-engine/pkg/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func rawSchema() models.Schema {
	return models.Schema{
		"Users": {
			TableName:   "Users",
			RowCount:    5,
			HealthScore: 100,
			Columns: map[string]*models.ColumnMetadata{
				"id":    {Name: "id", OriginalType: "INTEGER", Tags: []string{models.TagPrimaryKey}},
				"email": {Name: "email", OriginalType: "TEXT", Nullable: true},
			},
		},
	}
}

func TestMergeEnrichment_CaseInsensitiveTableMatch(t *testing.T) {
	raw := rawSchema()
	parsed := map[string]TableEnrichment{
		"users": {Columns: map[string]ColumnEnrichment{
			"email": {Description: strPtr("Customer contact address"), PotentialPII: boolPtr(true)},
		}},
	}

	merged, skipped := MergeEnrichment(raw, parsed)
	require.Empty(t, skipped)
	require.Contains(t, merged, "Users")

	email := merged["Users"].Columns["email"]
	require.NotNil(t, email.Description)
	assert.Equal(t, "Customer contact address", *email.Description)
	assert.True(t, email.PotentialPII)
}

func TestMergeEnrichment_GroundTruthUntouched(t *testing.T) {
	raw := rawSchema()
	parsed := map[string]TableEnrichment{
		"Users": {Columns: map[string]ColumnEnrichment{
			"email": {Description: strPtr("desc"), Tags: []string{"PII"}},
		}},
	}

	merged, _ := MergeEnrichment(raw, parsed)

	// The merge works on deep copies; raw keeps its zero-value
	// enrichment fields and structural tags.
	assert.Nil(t, raw["Users"].Columns["email"].Description)
	assert.Empty(t, raw["Users"].Columns["email"].Tags)
	assert.Equal(t, []string{"PII"}, merged["Users"].Columns["email"].Tags)
}

func TestMergeEnrichment_StructuralFieldsPreserved(t *testing.T) {
	raw := rawSchema()
	parsed := map[string]TableEnrichment{
		"Users": {Columns: map[string]ColumnEnrichment{
			"id": {Description: strPtr("Primary identifier")},
		}},
	}

	merged, _ := MergeEnrichment(raw, parsed)

	id := merged["Users"].Columns["id"]
	assert.Equal(t, "INTEGER", id.OriginalType)
	assert.True(t, id.HasTag(models.TagPrimaryKey))
	assert.Equal(t, int64(5), merged["Users"].RowCount)
	assert.Equal(t, 100.0, merged["Users"].HealthScore)
}

func TestMergeEnrichment_UnknownColumnsDropped(t *testing.T) {
	raw := rawSchema()
	parsed := map[string]TableEnrichment{
		"Users": {Columns: map[string]ColumnEnrichment{
			"legacy_flag": {Description: strPtr("does not exist")},
			"email":       {Description: strPtr("real")},
		}},
	}

	merged, _ := MergeEnrichment(raw, parsed)

	// Hallucinated columns never enter the merged schema; reporting
	// them is the validation gate's job.
	assert.NotContains(t, merged["Users"].Columns, "legacy_flag")
	assert.Contains(t, merged["Users"].Columns, "email")
}

func TestMergeEnrichment_UnmatchedTablesSkipped(t *testing.T) {
	raw := rawSchema()
	parsed := map[string]TableEnrichment{
		"Users":     {},
		"Phantom":   {},
		"Imaginary": {},
	}

	merged, skipped := MergeEnrichment(raw, parsed)
	assert.Len(t, merged, 1)
	assert.Equal(t, []string{"Imaginary", "Phantom"}, skipped)
}

func TestMergeEnrichment_CaseCollisionPicksFirstSortedKey(t *testing.T) {
	raw := models.Schema{
		"Orders": {TableName: "Orders", Columns: map[string]*models.ColumnMetadata{}},
		"orders": {TableName: "orders", Columns: map[string]*models.ColumnMetadata{}},
	}
	parsed := map[string]TableEnrichment{"ORDERS": {}}

	merged, skipped := MergeEnrichment(raw, parsed)
	require.Empty(t, skipped)
	require.Len(t, merged, 1)
	assert.Contains(t, merged, "Orders")
}

func TestMergeEnrichment_AbsentFieldsLeaveValues(t *testing.T) {
	raw := rawSchema()
	raw["Users"].Columns["email"].PotentialPII = true

	parsed := map[string]TableEnrichment{
		"Users": {Columns: map[string]ColumnEnrichment{
			"email": {Description: strPtr("only the description")},
		}},
	}

	merged, _ := MergeEnrichment(raw, parsed)
	assert.True(t, merged["Users"].Columns["email"].PotentialPII)
}
