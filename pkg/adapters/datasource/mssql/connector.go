// Package mssql implements the datasource.Connector contract for
// SQL Server using go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
)

// Connector provides SQL Server schema discovery and profiling.
type Connector struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConnector opens a connection against the DSN and verifies it.
// If logger is nil, a no-op logger is used.
func NewConnector(ctx context.Context, dsn string, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}
	return &Connector{db: db, logger: logger.Named("mssql")}, nil
}

// Close closes the underlying database handle.
func (c *Connector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// QuoteIdentifier quotes an identifier using square brackets.
func (c *Connector) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (c *Connector) tableRef(schemaName, tableName string) string {
	if schemaName == "" {
		return c.QuoteIdentifier(tableName)
	}
	return c.QuoteIdentifier(schemaName) + "." + c.QuoteIdentifier(tableName)
}

// DiscoverTables returns all user tables, excluding system objects.
func (c *Connector) DiscoverTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	const query = `
		SELECT s.name AS schema_name, t.name AS table_name
		FROM sys.tables t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		WHERE t.is_ms_shipped = 0
		ORDER BY s.name, t.name
	`

	rows, err := c.db.QueryContext(ctx, query)
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

// DiscoverColumns returns columns for a table, with primary key and
// unique flags resolved from single-column indexes.
func (c *Connector) DiscoverColumns(ctx context.Context, schemaName, tableName string) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT
			col.name AS column_name,
			ty.name AS data_type,
			col.is_nullable,
			CAST(CASE WHEN pk.column_id IS NOT NULL THEN 1 ELSE 0 END AS BIT) AS is_primary_key,
			CAST(CASE WHEN uq.column_id IS NOT NULL THEN 1 ELSE 0 END AS BIT) AS is_unique,
			col.column_id AS ordinal_position
		FROM sys.columns col
		JOIN sys.tables t ON t.object_id = col.object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.types ty ON ty.user_type_id = col.user_type_id
		LEFT JOIN (
			SELECT ic.object_id, ic.column_id
			FROM sys.index_columns ic
			JOIN sys.indexes ix ON ix.object_id = ic.object_id AND ix.index_id = ic.index_id
			WHERE ix.is_primary_key = 1
		) pk ON pk.object_id = col.object_id AND pk.column_id = col.column_id
		LEFT JOIN (
			SELECT ic.object_id, ic.column_id
			FROM sys.index_columns ic
			JOIN sys.indexes ix ON ix.object_id = ic.object_id AND ix.index_id = ic.index_id
			WHERE ix.is_unique = 1 AND ix.is_primary_key = 0
		) uq ON uq.object_id = col.object_id AND uq.column_id = col.column_id
		WHERE s.name = @p1 AND t.name = @p2
		ORDER BY col.column_id
	`

	rows, err := c.db.QueryContext(ctx, query, schemaName, tableName)
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
			fk.name AS constraint_name,
			sc.name AS source_column,
			tt.name AS target_table,
			tc.name AS target_column
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.tables st ON st.object_id = fk.parent_object_id
		JOIN sys.schemas s ON s.schema_id = st.schema_id
		JOIN sys.columns sc ON sc.object_id = fkc.parent_object_id AND sc.column_id = fkc.parent_column_id
		JOIN sys.tables tt ON tt.object_id = fk.referenced_object_id
		JOIN sys.columns tc ON tc.object_id = fkc.referenced_object_id AND tc.column_id = fkc.referenced_column_id
		WHERE s.name = @p1 AND st.name = @p2 AND fkc.constraint_column_id = 1
	`

	rows, err := c.db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []datasource.ForeignKeyMetadata
	for rows.Next() {
		var fk datasource.ForeignKeyMetadata
		if err := rows.Scan(&fk.ConstraintName, &fk.SourceColumn, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}
	return fks, nil
}

// CountRows returns the table's total row count.
func (c *Connector) CountRows(ctx context.Context, schemaName, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT_BIG(*) FROM %s", c.tableRef(schemaName, tableName))

	var count int64
	if err := c.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
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
		c.tableRef(schemaName, tableName),
		columns,
		c.QuoteIdentifier,
		func(quoted string) string { return "CAST(" + quoted + " AS FLOAT)" },
	)

	if err := c.db.QueryRowContext(ctx, query).Scan(plan.Dest()...); err != nil {
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
	query := fmt.Sprintf("SELECT TOP (%d) %s FROM %s",
		limit, strings.Join(quoted, ", "), c.tableRef(schemaName, tableName))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample rows: %w", err)
	}
	defer rows.Close()

	return datasource.ScanSampleRows(rows, columns)
}

// Ensure Connector implements datasource.Connector at compile time.
var _ datasource.Connector = (*Connector)(nil)
