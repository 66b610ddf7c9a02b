package extract

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
	"github.com/schemalens/schemalens-engine/pkg/models"
)

// numericTypeKeywords classify a driver-reported type as numeric by
// substring match.
var numericTypeKeywords = []string{"INT", "FLOAT", "DECIMAL", "NUMERIC", "REAL"}

// sampleValueLimit caps how many sample values are kept per column.
const sampleValueLimit = 3

// IsNumericType reports whether a driver-reported type string denotes a
// numeric column.
func IsNumericType(dataType string) bool {
	upper := strings.ToUpper(dataType)
	for _, kw := range numericTypeKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// ProfileResult holds the statistical profile of one table.
type ProfileResult struct {
	RowCount    int64
	HealthScore float64
	Stats       map[string]*models.ColumnStats
}

// Profiler computes per-table statistics over a profiling handle.
// Exactly one count query, one aggregate query, and one sample query
// are issued per non-empty table.
type Profiler struct {
	statementTimeout time.Duration
	logger           *zap.Logger
}

// NewProfiler creates a profiler. statementTimeout bounds each SQL
// round trip; zero disables the bound.
func NewProfiler(statementTimeout time.Duration, logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		statementTimeout: statementTimeout,
		logger:           logger.Named("profiler"),
	}
}

// ProfileTable profiles one table. columns must be in discovery order
// since health penalties are applied in that order. Every query error
// degrades to a partial result rather than failing, so structural
// discovery survives a table the profiler cannot read.
func (p *Profiler) ProfileTable(ctx context.Context, conn datasource.TableProfiler, schemaName, tableName string, columns []datasource.ColumnMetadata) (*ProfileResult, error) {
	result := &ProfileResult{
		HealthScore: 100.0,
		Stats:       make(map[string]*models.ColumnStats),
	}

	rowCount, err := p.countRows(ctx, conn, schemaName, tableName)
	if err != nil {
		p.logger.Warn("count query failed, returning empty profile",
			zap.String("table", tableName),
			zap.Error(err))
		return result, nil
	}
	result.RowCount = rowCount
	if rowCount == 0 {
		return result, nil
	}

	specs := make([]datasource.ColumnSpec, len(columns))
	names := make([]string, len(columns))
	for i, col := range columns {
		specs[i] = datasource.ColumnSpec{Name: col.ColumnName, Numeric: IsNumericType(col.DataType)}
		names[i] = col.ColumnName
	}

	aggregates, err := p.aggregate(ctx, conn, schemaName, tableName, specs)
	if err != nil {
		p.logger.Warn("aggregate query failed, returning partial profile",
			zap.String("table", tableName),
			zap.Error(err))
		return result, nil
	}

	samples, err := p.sample(ctx, conn, schemaName, tableName, names)
	if err != nil {
		p.logger.Warn("sample query failed, continuing without samples",
			zap.String("table", tableName),
			zap.Error(err))
		samples = map[string][]string{}
	}

	for _, col := range columns {
		agg, ok := aggregates[col.ColumnName]
		if !ok {
			continue
		}

		stats := &models.ColumnStats{
			NullCount:        agg.NullCount,
			NullPercentage:   roundTo(float64(agg.NullCount)/float64(rowCount)*100, 2),
			UniqueCount:      agg.DistinctCount,
			UniquePercentage: roundTo(float64(agg.DistinctCount)/float64(rowCount)*100, 2),
			SampleValues:     truncateSamples(samples[col.ColumnName]),
			MinValue:         agg.Min,
			MaxValue:         agg.Max,
			MeanValue:        roundPtr(agg.Mean, 4),
		}
		result.Stats[col.ColumnName] = stats

		result.HealthScore = applyHealthPenalties(result.HealthScore, col.ColumnName, stats)
	}

	return result, nil
}

// applyHealthPenalties lowers the running health score for one column.
// Penalties are cumulative and the score never drops below zero.
func applyHealthPenalties(score float64, columnName string, stats *models.ColumnStats) float64 {
	if stats.NullPercentage > 10 {
		score -= 2.5
	}
	if stats.NullPercentage > 50 {
		score -= 5.0
	}
	if stats.MinValue != nil && *stats.MinValue < 0 &&
		strings.Contains(strings.ToUpper(columnName), "ID") {
		score -= 5.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

func (p *Profiler) countRows(ctx context.Context, conn datasource.TableProfiler, schemaName, tableName string) (int64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return conn.CountRows(ctx, schemaName, tableName)
}

func (p *Profiler) aggregate(ctx context.Context, conn datasource.TableProfiler, schemaName, tableName string, specs []datasource.ColumnSpec) (map[string]datasource.ColumnAggregate, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return conn.AggregateColumnStats(ctx, schemaName, tableName, specs)
}

func (p *Profiler) sample(ctx context.Context, conn datasource.TableProfiler, schemaName, tableName string, columns []string) (map[string][]string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return conn.SampleRows(ctx, schemaName, tableName, columns, sampleValueLimit)
}

func (p *Profiler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.statementTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.statementTimeout)
}

func truncateSamples(values []string) []string {
	if len(values) > sampleValueLimit {
		return values[:sampleValueLimit]
	}
	return values
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

func roundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	rounded := roundTo(*v, places)
	return &rounded
}
