// Package postgres implements the datasource.Connector contract for
// PostgreSQL using pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
)

// qualifiedTableName returns a properly quoted table reference.
// If schemaName is empty, returns just the quoted table name.
func qualifiedTableName(schemaName, tableName string) string {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	if schemaName == "" {
		return quotedTable
	}
	return pgx.Identifier{schemaName}.Sanitize() + "." + quotedTable
}

// Connector provides PostgreSQL schema discovery and profiling over an
// owned pool.
type Connector struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewConnector opens a new pool against the DSN.
// If logger is nil, a no-op logger is used.
func NewConnector(ctx context.Context, dsn string, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Connector{pool: pool, logger: logger.Named("postgres")}, nil
}

// Close releases the pool.
func (c *Connector) Close() error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

// QuoteIdentifier quotes an identifier using PostgreSQL rules.
func (c *Connector) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// DiscoverTables returns all user tables, excluding system schemas.
func (c *Connector) DiscoverTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	const query = `
		SELECT t.table_schema, t.table_name
		FROM information_schema.tables t
		WHERE t.table_type = 'BASE TABLE'
		  AND t.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY t.table_schema, t.table_name
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableMetadata
	for rows.Next() {
		var t datasource.TableMetadata
		if err := rows.Scan(&t.SchemaName, &t.TableName); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// DiscoverColumns returns columns for a specific table.
// Uses pg_index for primary key and unique detection, which correctly
// identifies primary keys even when created as unique indexes.
func (c *Connector) DiscoverColumns(ctx context.Context, schemaName, tableName string) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' as is_nullable,
			COALESCE(pk.is_pk, false) as is_primary_key,
			COALESCE(uq.is_unique, false) as is_unique,
			c.ordinal_position
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT a.attname as column_name, true as is_pk
			FROM pg_index ix
			JOIN pg_class t ON t.oid = ix.indrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
			WHERE ix.indisprimary = true
			  AND n.nspname = $1
			  AND t.relname = $2
			  AND array_length(ix.indkey, 1) = 1
		) pk ON c.column_name = pk.column_name
		LEFT JOIN (
			SELECT a.attname as column_name, true as is_unique
			FROM pg_index ix
			JOIN pg_class t ON t.oid = ix.indrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
			WHERE ix.indisunique = true
			  AND ix.indisprimary = false
			  AND n.nspname = $1
			  AND t.relname = $2
			  AND array_length(ix.indkey, 1) = 1
		) uq ON c.column_name = uq.column_name
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := c.pool.Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var col datasource.ColumnMetadata
		if err := rows.Scan(&col.ColumnName, &col.DataType, &col.IsNullable, &col.IsPrimaryKey, &col.IsUnique, &col.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

// DiscoverForeignKeys returns foreign keys declared on a table, reduced
// to the first column pair of each constraint.
func (c *Connector) DiscoverForeignKeys(ctx context.Context, schemaName, tableName string) ([]datasource.ForeignKeyMetadata, error) {
	const query = `
		SELECT
			tc.constraint_name,
			kcu.column_name as source_column,
			ccu.table_name as target_table,
			ccu.column_name as target_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = $1
		  AND tc.table_name = $2
		  AND kcu.ordinal_position = 1
	`

	rows, err := c.pool.Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []datasource.ForeignKeyMetadata
	seen := make(map[string]bool)
	for rows.Next() {
		var fk datasource.ForeignKeyMetadata
		if err := rows.Scan(&fk.ConstraintName, &fk.SourceColumn, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		// constraint_column_usage can fan out for composite targets;
		// keep the first pair per constraint.
		if seen[fk.ConstraintName] {
			continue
		}
		seen[fk.ConstraintName] = true
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}
	return fks, nil
}

// CountRows returns the table's total row count.
func (c *Connector) CountRows(ctx context.Context, schemaName, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", qualifiedTableName(schemaName, tableName))

	var count int64
	if err := c.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}

// AggregateColumnStats issues the single batched aggregate statement.
func (c *Connector) AggregateColumnStats(ctx context.Context, schemaName, tableName string, columns []datasource.ColumnSpec) (map[string]datasource.ColumnAggregate, error) {
	if len(columns) == 0 {
		return map[string]datasource.ColumnAggregate{}, nil
	}

	plan := datasource.NewAggregatePlan(columns)
	query := datasource.BuildAggregateSQL(
		qualifiedTableName(schemaName, tableName),
		columns,
		c.QuoteIdentifier,
		func(quoted string) string { return quoted + "::double precision" },
	)

	if err := c.pool.QueryRow(ctx, query).Scan(plan.Dest()...); err != nil {
		return nil, fmt.Errorf("aggregate column stats: %w", err)
	}
	return plan.Result(), nil
}

// SampleRows returns stringified values from the first limit rows.
func (c *Connector) SampleRows(ctx context.Context, schemaName, tableName string, columns []string, limit int) (map[string][]string, error) {
	if len(columns) == 0 {
		return map[string][]string{}, nil
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = c.QuoteIdentifier(col)
	}
	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d",
		strings.Join(quoted, ", "), qualifiedTableName(schemaName, tableName), limit)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample rows: %w", err)
	}
	defer rows.Close()

	samples := make(map[string][]string, len(columns))
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read sample row: %w", err)
		}
		for i, col := range columns {
			if i >= len(values) {
				break
			}
			if s, ok := datasource.FormatValue(values[i]); ok {
				samples[col] = append(samples[col], s)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}
	return samples, nil
}

// Ensure Connector implements datasource.Connector at compile time.
var _ datasource.Connector = (*Connector)(nil)
