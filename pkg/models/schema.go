// Package models defines the data dictionary domain types shared across
// the engine: deterministic schema/statistics structures produced by
// extraction, and the enrichment fields layered on top of them.
package models

// Structural tags owned by the extractor. Semantic tags (PII, System, ...)
// are enrichment-owned and free-form.
const (
	TagPrimaryKey = "PK"
	TagForeignKey = "FK"
	TagUnique     = "UNIQUE"
)

// ColumnStats is the deterministic statistical profile of a column.
// Computed exactly once per column per extraction pass and never mutated.
type ColumnStats struct {
	NullCount        int64    `json:"null_count"`
	NullPercentage   float64  `json:"null_percentage"`
	UniqueCount      int64    `json:"unique_count"`
	UniquePercentage float64  `json:"unique_percentage"`
	SampleValues     []string `json:"sample_values"`
	MinValue         *float64 `json:"min_value"`
	MaxValue         *float64 `json:"max_value"`
	MeanValue        *float64 `json:"mean_value"`
}

// ColumnMetadata is the atomic unit of the data dictionary.
// Name, OriginalType, Nullable and structural tags are ground truth owned
// by the extractor; Description, BusinessLogic, PotentialPII and semantic
// tags are filled in by enrichment and start empty.
type ColumnMetadata struct {
	Name          string       `json:"name"`
	OriginalType  string       `json:"original_type"`
	Nullable      bool         `json:"nullable"`
	Tags          []string     `json:"tags"`
	Description   *string      `json:"description"`
	BusinessLogic *string      `json:"business_logic"`
	PotentialPII  bool         `json:"potential_pii"`
	Stats         *ColumnStats `json:"stats"`
}

// ForeignKey is a directed edge from a local column to a referenced
// table's column.
type ForeignKey struct {
	Column         string `json:"column"`
	ReferredTable  string `json:"referred_table"`
	ReferredColumn string `json:"referred_column"`
}

// TableSchema is a single table's entry in the dictionary.
// HealthScore starts at 100 and is only ever penalized by profiling
// heuristics; it stays within [0, 100].
type TableSchema struct {
	TableName   string                     `json:"table_name"`
	RowCount    int64                      `json:"row_count"`
	Columns     map[string]*ColumnMetadata `json:"columns"`
	HealthScore float64                    `json:"health_score"`
	ForeignKeys []ForeignKey               `json:"foreign_keys"`
	Description *string                    `json:"description"`
}

// Schema maps table name to its dictionary entry.
type Schema map[string]*TableSchema

// Clone returns a deep copy of the table schema. Enrichment overlays
// fields on a clone so the extracted ground truth is never mutated.
func (t *TableSchema) Clone() *TableSchema {
	if t == nil {
		return nil
	}
	out := &TableSchema{
		TableName:   t.TableName,
		RowCount:    t.RowCount,
		HealthScore: t.HealthScore,
		Description: copyStringPtr(t.Description),
	}
	if t.Columns != nil {
		out.Columns = make(map[string]*ColumnMetadata, len(t.Columns))
		for name, col := range t.Columns {
			out.Columns[name] = col.Clone()
		}
	}
	if t.ForeignKeys != nil {
		out.ForeignKeys = make([]ForeignKey, len(t.ForeignKeys))
		copy(out.ForeignKeys, t.ForeignKeys)
	}
	return out
}

// Clone returns a deep copy of the column metadata.
func (c *ColumnMetadata) Clone() *ColumnMetadata {
	if c == nil {
		return nil
	}
	out := &ColumnMetadata{
		Name:          c.Name,
		OriginalType:  c.OriginalType,
		Nullable:      c.Nullable,
		Description:   copyStringPtr(c.Description),
		BusinessLogic: copyStringPtr(c.BusinessLogic),
		PotentialPII:  c.PotentialPII,
	}
	if c.Tags != nil {
		out.Tags = make([]string, len(c.Tags))
		copy(out.Tags, c.Tags)
	}
	if c.Stats != nil {
		stats := *c.Stats
		if c.Stats.SampleValues != nil {
			stats.SampleValues = make([]string, len(c.Stats.SampleValues))
			copy(stats.SampleValues, c.Stats.SampleValues)
		}
		stats.MinValue = copyFloatPtr(c.Stats.MinValue)
		stats.MaxValue = copyFloatPtr(c.Stats.MaxValue)
		stats.MeanValue = copyFloatPtr(c.Stats.MeanValue)
		out.Stats = &stats
	}
	return out
}

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for name, table := range s {
		out[name] = table.Clone()
	}
	return out
}

// HasTag reports whether the column carries the given tag.
func (c *ColumnMetadata) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Overview holds database-level aggregates derived from a schema.
type Overview struct {
	TotalTables     int     `json:"total_tables"`
	TotalColumns    int     `json:"total_columns"`
	TotalRows       int64   `json:"total_rows"`
	AvgHealth       float64 `json:"avg_health"`
	PIIColumnCount  int     `json:"pii_count"`
	ForeignKeyCount int     `json:"fk_count"`
}

// Summarize computes database-level aggregates over a schema.
func Summarize(s Schema) Overview {
	o := Overview{TotalTables: len(s)}
	var healthSum float64
	for _, table := range s {
		o.TotalColumns += len(table.Columns)
		o.TotalRows += table.RowCount
		o.ForeignKeyCount += len(table.ForeignKeys)
		healthSum += table.HealthScore
		for _, col := range table.Columns {
			if col.PotentialPII {
				o.PIIColumnCount++
			}
		}
	}
	if o.TotalTables > 0 {
		o.AvgHealth = healthSum / float64(o.TotalTables)
	}
	return o
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyFloatPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
