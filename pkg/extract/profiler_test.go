package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
	"github.com/schemalens/schemalens-engine/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestIsNumericType(t *testing.T) {
	tests := []struct {
		dataType string
		numeric  bool
	}{
		{"INTEGER", true},
		{"int", true},
		{"BIGINT", true},
		{"double precision", false},
		{"FLOAT8", true},
		{"DECIMAL(10,2)", true},
		{"NUMERIC", true},
		{"REAL", true},
		{"VARCHAR(255)", false},
		{"TEXT", false},
		{"TIMESTAMP", false},
	}

	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			assert.Equal(t, tt.numeric, IsNumericType(tt.dataType))
		})
	}
}

func TestProfileTable_EmptyTableShortCircuits(t *testing.T) {
	conn := datasource.NewMockConnector()
	conn.CountRowsFunc = func(ctx context.Context, schemaName, tableName string) (int64, error) {
		return 0, nil
	}

	p := NewProfiler(0, nil)
	result, err := p.ProfileTable(context.Background(), conn, "", "empty", []datasource.ColumnMetadata{
		{ColumnName: "id", DataType: "INTEGER"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.RowCount)
	assert.Equal(t, 100.0, result.HealthScore)
	assert.Empty(t, result.Stats)
	// Only the count statement runs against an empty table.
	assert.Equal(t, 1, conn.CountRowsCalls)
	assert.Equal(t, 0, conn.AggregateCalls)
	assert.Equal(t, 0, conn.SampleRowsCalls)
}

func TestProfileTable_TwoStatisticsStatements(t *testing.T) {
	conn := datasource.NewMockConnector()
	conn.CountRowsFunc = func(ctx context.Context, schemaName, tableName string) (int64, error) {
		return 100, nil
	}
	conn.AggregateFunc = func(ctx context.Context, schemaName, tableName string, columns []datasource.ColumnSpec) (map[string]datasource.ColumnAggregate, error) {
		out := make(map[string]datasource.ColumnAggregate, len(columns))
		for _, col := range columns {
			out[col.Name] = datasource.ColumnAggregate{NullCount: 0, DistinctCount: 100}
		}
		return out, nil
	}

	columns := make([]datasource.ColumnMetadata, 12)
	for i := range columns {
		columns[i] = datasource.ColumnMetadata{ColumnName: string(rune('a' + i)), DataType: "TEXT"}
	}

	p := NewProfiler(0, nil)
	result, err := p.ProfileTable(context.Background(), conn, "", "wide", columns)
	require.NoError(t, err)
	require.Len(t, result.Stats, 12)

	// One aggregate and one sample statement regardless of column count.
	assert.Equal(t, 1, conn.CountRowsCalls)
	assert.Equal(t, 1, conn.AggregateCalls)
	assert.Equal(t, 1, conn.SampleRowsCalls)
}

func TestProfileTable_Percentages(t *testing.T) {
	conn := datasource.NewMockConnector()
	conn.CountRowsFunc = func(ctx context.Context, schemaName, tableName string) (int64, error) {
		return 3, nil
	}
	conn.AggregateFunc = func(ctx context.Context, schemaName, tableName string, columns []datasource.ColumnSpec) (map[string]datasource.ColumnAggregate, error) {
		return map[string]datasource.ColumnAggregate{
			"email": {NullCount: 1, DistinctCount: 2},
		}, nil
	}

	p := NewProfiler(0, nil)
	result, err := p.ProfileTable(context.Background(), conn, "", "users", []datasource.ColumnMetadata{
		{ColumnName: "email", DataType: "TEXT"},
	})
	require.NoError(t, err)

	stats := result.Stats["email"]
	require.NotNil(t, stats)
	assert.Equal(t, 33.33, stats.NullPercentage)
	assert.Equal(t, 66.67, stats.UniquePercentage)
}

func TestProfileTable_MeanRounding(t *testing.T) {
	conn := datasource.NewMockConnector()
	conn.CountRowsFunc = func(ctx context.Context, schemaName, tableName string) (int64, error) {
		return 10, nil
	}
	conn.AggregateFunc = func(ctx context.Context, schemaName, tableName string, columns []datasource.ColumnSpec) (map[string]datasource.ColumnAggregate, error) {
		return map[string]datasource.ColumnAggregate{
			"price": {NullCount: 0, DistinctCount: 10, Min: floatPtr(1), Max: floatPtr(9), Mean: floatPtr(4.123456)},
		}, nil
	}

	p := NewProfiler(0, nil)
	result, err := p.ProfileTable(context.Background(), conn, "", "products", []datasource.ColumnMetadata{
		{ColumnName: "price", DataType: "DECIMAL(10,2)"},
	})
	require.NoError(t, err)

	stats := result.Stats["price"]
	require.NotNil(t, stats.MeanValue)
	assert.Equal(t, 4.1235, *stats.MeanValue)
}

func TestProfileTable_SampleValuesCapped(t *testing.T) {
	conn := datasource.NewMockConnector()
	conn.CountRowsFunc = func(ctx context.Context, schemaName, tableName string) (int64, error) {
		return 5, nil
	}
	conn.AggregateFunc = func(ctx context.Context, schemaName, tableName string, columns []datasource.ColumnSpec) (map[string]datasource.ColumnAggregate, error) {
		return map[string]datasource.ColumnAggregate{"name": {DistinctCount: 5}}, nil
	}
	conn.SampleRowsFunc = func(ctx context.Context, schemaName, tableName string, columns []string, limit int) (map[string][]string, error) {
		assert.Equal(t, 3, limit)
		return map[string][]string{"name": {"a", "b", "c", "d"}}, nil
	}

	p := NewProfiler(0, nil)
	result, err := p.ProfileTable(context.Background(), conn, "", "t", []datasource.ColumnMetadata{
		{ColumnName: "name", DataType: "TEXT"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result.Stats["name"].SampleValues)
}

func TestProfileTable_AggregateErrorDegrades(t *testing.T) {
	conn := datasource.NewMockConnector()
	conn.CountRowsFunc = func(ctx context.Context, schemaName, tableName string) (int64, error) {
		return 50, nil
	}
	conn.AggregateFunc = func(ctx context.Context, schemaName, tableName string, columns []datasource.ColumnSpec) (map[string]datasource.ColumnAggregate, error) {
		return nil, errors.New("relation locked")
	}

	p := NewProfiler(0, nil)
	result, err := p.ProfileTable(context.Background(), conn, "", "t", []datasource.ColumnMetadata{
		{ColumnName: "id", DataType: "INTEGER"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(50), result.RowCount)
	assert.Equal(t, 100.0, result.HealthScore)
	assert.Empty(t, result.Stats)
}

func TestProfileTable_CountErrorDegrades(t *testing.T) {
	conn := datasource.NewMockConnector()
	conn.CountRowsFunc = func(ctx context.Context, schemaName, tableName string) (int64, error) {
		return 0, errors.New("no such table")
	}

	p := NewProfiler(0, nil)
	result, err := p.ProfileTable(context.Background(), conn, "", "gone", nil)
	require.NoError(t, err)

	// An unreadable table keeps its structure with an empty profile.
	assert.Equal(t, int64(0), result.RowCount)
	assert.Equal(t, 100.0, result.HealthScore)
	assert.Empty(t, result.Stats)
	assert.Equal(t, 0, conn.AggregateCalls)
	assert.Equal(t, 0, conn.SampleRowsCalls)
}

func TestApplyHealthPenalties(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		column string
		stats  *models.ColumnStats
		want   float64
	}{
		{
			name:   "clean column",
			score:  100,
			column: "name",
			stats:  &models.ColumnStats{NullPercentage: 5},
			want:   100,
		},
		{
			name:   "moderately null",
			score:  100,
			column: "notes",
			stats:  &models.ColumnStats{NullPercentage: 25},
			want:   97.5,
		},
		{
			name:   "very null stacks both penalties",
			score:  100,
			column: "legacy_notes",
			stats:  &models.ColumnStats{NullPercentage: 80},
			want:   92.5,
		},
		{
			name:   "negative identifier",
			score:  100,
			column: "customer_id",
			stats:  &models.ColumnStats{MinValue: floatPtr(-3)},
			want:   95,
		},
		{
			name:   "negative id match is case-insensitive",
			score:  100,
			column: "OrderID",
			stats:  &models.ColumnStats{MinValue: floatPtr(-1)},
			want:   95,
		},
		{
			name:   "negative non-identifier untouched",
			score:  100,
			column: "balance",
			stats:  &models.ColumnStats{MinValue: floatPtr(-50)},
			want:   100,
		},
		{
			name:   "floored at zero",
			score:  4,
			column: "bad_id",
			stats:  &models.ColumnStats{NullPercentage: 90, MinValue: floatPtr(-1)},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyHealthPenalties(tt.score, tt.column, tt.stats)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got, tt.score)
		})
	}
}

func TestProfileTable_HealthNeverExceedsStart(t *testing.T) {
	conn := datasource.NewMockConnector()
	conn.CountRowsFunc = func(ctx context.Context, schemaName, tableName string) (int64, error) {
		return 100, nil
	}
	conn.AggregateFunc = func(ctx context.Context, schemaName, tableName string, columns []datasource.ColumnSpec) (map[string]datasource.ColumnAggregate, error) {
		return map[string]datasource.ColumnAggregate{
			"a": {NullCount: 60, DistinctCount: 2},
			"b": {NullCount: 20, DistinctCount: 5},
			"c": {NullCount: 0, DistinctCount: 100},
		}, nil
	}

	p := NewProfiler(0, nil)
	result, err := p.ProfileTable(context.Background(), conn, "", "t", []datasource.ColumnMetadata{
		{ColumnName: "a", DataType: "TEXT"},
		{ColumnName: "b", DataType: "TEXT"},
		{ColumnName: "c", DataType: "TEXT"},
	})
	require.NoError(t, err)

	// a: -2.5 -5.0, b: -2.5, c: no penalty.
	assert.Equal(t, 90.0, result.HealthScore)
	assert.GreaterOrEqual(t, result.HealthScore, 0.0)
	assert.LessOrEqual(t, result.HealthScore, 100.0)
}
