// Package extract discovers database structure and computes per-table
// statistical profiles.
package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
	"github.com/schemalens/schemalens-engine/pkg/models"
)

// Extractor builds the ground-truth schema mapping for a database.
// Tables are introspected and profiled concurrently, each worker on its
// own connection handle.
type Extractor struct {
	factory  datasource.ConnectorFactory
	dialect  string
	dsn      string
	workers  int
	profiler *Profiler
	logger   *zap.Logger
}

// Config holds dependencies for creating an Extractor.
type Config struct {
	Factory          datasource.ConnectorFactory
	Dialect          string
	DSN              string
	Workers          int // max concurrent table workers, default 8
	StatementTimeout time.Duration
	Logger           *zap.Logger
}

// NewExtractor creates an extractor for one database.
func NewExtractor(cfg *Config) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	return &Extractor{
		factory:  cfg.Factory,
		dialect:  cfg.Dialect,
		dsn:      cfg.DSN,
		workers:  workers,
		profiler: NewProfiler(cfg.StatementTimeout, logger),
		logger:   logger.Named("extractor"),
	}
}

// Extract returns the mapping of table name to TableSchema with
// structure, tags, foreign keys, statistics, and health score
// populated. A single table's failure is logged and skipped, it never
// aborts the rest of the extraction.
func (e *Extractor) Extract(ctx context.Context) (models.Schema, error) {
	discovery, err := e.factory.Connect(ctx, e.dialect, e.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect for discovery: %w", err)
	}
	defer discovery.Close()

	tables, err := discovery.DiscoverTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover tables: %w", err)
	}

	e.logger.Info("discovered tables",
		zap.String("dialect", e.dialect),
		zap.Int("count", len(tables)))

	schema := make(models.Schema, len(tables))
	if len(tables) == 0 {
		return schema, nil
	}

	limit := e.workers
	if len(tables) < limit {
		limit = len(tables)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, tm := range tables {
		tm := tm
		g.Go(func() error {
			table, err := e.extractTable(gctx, tm)
			if err != nil {
				// Isolated per-table failure. Siblings keep going.
				e.logger.Error("failed to extract table",
					zap.String("table", tm.TableName),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			schema[tm.TableName] = table
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return schema, nil
}

// extractTable introspects and profiles one table on a dedicated
// connection handle.
func (e *Extractor) extractTable(ctx context.Context, tm datasource.TableMetadata) (*models.TableSchema, error) {
	conn, err := e.factory.Connect(ctx, e.dialect, e.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect worker: %w", err)
	}
	defer conn.Close()

	columns, err := conn.DiscoverColumns(ctx, tm.SchemaName, tm.TableName)
	if err != nil {
		return nil, fmt.Errorf("discover columns: %w", err)
	}

	fks, err := conn.DiscoverForeignKeys(ctx, tm.SchemaName, tm.TableName)
	if err != nil {
		return nil, fmt.Errorf("discover foreign keys: %w", err)
	}
	fkColumns := make(map[string]bool, len(fks))
	for _, fk := range fks {
		fkColumns[fk.SourceColumn] = true
	}

	table := &models.TableSchema{
		TableName:   tm.TableName,
		Columns:     make(map[string]*models.ColumnMetadata, len(columns)),
		HealthScore: 100.0,
	}
	for _, fk := range fks {
		table.ForeignKeys = append(table.ForeignKeys, models.ForeignKey{
			Column:         fk.SourceColumn,
			ReferredTable:  fk.TargetTable,
			ReferredColumn: fk.TargetColumn,
		})
	}

	for _, col := range columns {
		meta := &models.ColumnMetadata{
			Name:         col.ColumnName,
			OriginalType: col.DataType,
			Nullable:     col.IsNullable,
		}
		if col.IsPrimaryKey {
			meta.Tags = append(meta.Tags, models.TagPrimaryKey)
		}
		if fkColumns[col.ColumnName] {
			meta.Tags = append(meta.Tags, models.TagForeignKey)
		}
		if col.IsUnique {
			meta.Tags = append(meta.Tags, models.TagUnique)
		}
		table.Columns[col.ColumnName] = meta
	}

	profile, err := e.profiler.ProfileTable(ctx, conn, tm.SchemaName, tm.TableName, columns)
	if err != nil {
		return nil, fmt.Errorf("profile table: %w", err)
	}
	table.RowCount = profile.RowCount
	table.HealthScore = profile.HealthScore
	for name, stats := range profile.Stats {
		if meta, ok := table.Columns[name]; ok {
			meta.Stats = stats
		}
	}

	e.logger.Debug("extracted table",
		zap.String("table", tm.TableName),
		zap.Int64("row_count", table.RowCount),
		zap.Float64("health_score", table.HealthScore),
		zap.Int("columns", len(table.Columns)))

	return table, nil
}
