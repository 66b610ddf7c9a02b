// Package sqlite implements the datasource.Connector contract for
// SQLite files using the cgo-free modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/schemalens/schemalens-engine/pkg/adapters/datasource"
)

// Connector provides SQLite schema discovery and profiling over a
// single database file.
type Connector struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConnector opens the database file and verifies the connection.
// If logger is nil, a no-op logger is used.
func NewConnector(ctx context.Context, dsn string, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return &Connector{db: db, logger: logger.Named("sqlite")}, nil
}

// Close closes the underlying database handle.
func (c *Connector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// QuoteIdentifier quotes an identifier using double quotes.
func (c *Connector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (c *Connector) tableRef(schemaName, tableName string) string {
	// SQLite has no schemas worth qualifying here; the attached main
	// database is the only namespace profiled.
	return c.QuoteIdentifier(tableName)
}

// DiscoverTables returns all user tables, excluding SQLite internals.
func (c *Connector) DiscoverTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	const query = `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableMetadata
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, datasource.TableMetadata{SchemaName: "", TableName: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// DiscoverColumns returns columns for a table via PRAGMA table_info,
// with unique flags resolved from single-column unique indexes.
func (c *Connector) DiscoverColumns(ctx context.Context, schemaName, tableName string) ([]datasource.ColumnMetadata, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", c.QuoteIdentifier(tableName))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, datasource.ColumnMetadata{
			ColumnName:      name,
			DataType:        typ,
			IsNullable:      notNull == 0,
			IsPrimaryKey:    pk > 0,
			OrdinalPosition: cid + 1,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	unique, err := c.uniqueColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	for i := range columns {
		if unique[columns[i].ColumnName] && !columns[i].IsPrimaryKey {
			columns[i].IsUnique = true
		}
	}
	return columns, nil
}

// uniqueColumns returns the set of columns covered by a single-column
// unique index.
func (c *Connector) uniqueColumns(ctx context.Context, tableName string) (map[string]bool, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", c.QuoteIdentifier(tableName))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var uniqueIndexes []string
	for rows.Next() {
		var (
			seq     int
			name    string
			isUniq  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &isUniq, &origin, &partial); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		if isUniq == 1 {
			uniqueIndexes = append(uniqueIndexes, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
	}

	unique := make(map[string]bool)
	for _, idx := range uniqueIndexes {
		cols, err := c.indexColumns(ctx, idx)
		if err != nil {
			return nil, err
		}
		if len(cols) == 1 {
			unique[cols[0]] = true
		}
	}
	return unique, nil
}

func (c *Connector) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%s)", c.QuoteIdentifier(indexName))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query index columns: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			seqno int
			cid   int
			name  sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("scan index column: %w", err)
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index columns: %w", err)
	}
	return cols, nil
}

// DiscoverForeignKeys returns foreign keys via PRAGMA foreign_key_list,
// reduced to the first column pair of each constraint.
func (c *Connector) DiscoverForeignKeys(ctx context.Context, schemaName, tableName string) ([]datasource.ForeignKeyMetadata, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", c.QuoteIdentifier(tableName))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []datasource.ForeignKeyMetadata
	for rows.Next() {
		var (
			id       int
			seq      int
			table    string
			from     string
			to       sql.NullString
			onUpdate string
			onDelete string
			match    string
		)
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		// seq > 0 rows are additional columns of a composite key.
		if seq != 0 {
			continue
		}
		fks = append(fks, datasource.ForeignKeyMetadata{
			ConstraintName: fmt.Sprintf("fk_%s_%d", tableName, id),
			SourceColumn:   from,
			TargetTable:    table,
			TargetColumn:   to.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}
	return fks, nil
}

// CountRows returns the table's total row count.
func (c *Connector) CountRows(ctx context.Context, schemaName, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.tableRef(schemaName, tableName))

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
		func(quoted string) string { return "CAST(" + quoted + " AS REAL)" },
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
	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d",
		strings.Join(quoted, ", "), c.tableRef(schemaName, tableName), limit)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample rows: %w", err)
	}
	defer rows.Close()

	return datasource.ScanSampleRows(rows, columns)
}

// Ensure Connector implements datasource.Connector at compile time.
var _ datasource.Connector = (*Connector)(nil)
