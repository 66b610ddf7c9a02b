// Package datasource defines the dialect-neutral contracts for schema
// introspection and statistical profiling, plus the registry adapters
// use to make themselves available.
package datasource

import "context"

// SchemaDiscoverer extracts structural metadata from a database.
// System/catalog tables are filtered by each implementation before
// results are returned.
type SchemaDiscoverer interface {
	// DiscoverTables returns all user tables.
	DiscoverTables(ctx context.Context) ([]TableMetadata, error)

	// DiscoverColumns returns columns for a table in ordinal order,
	// with primary-key and single-column unique flags resolved.
	DiscoverColumns(ctx context.Context, schemaName, tableName string) ([]ColumnMetadata, error)

	// DiscoverForeignKeys returns foreign keys declared on a table.
	// Only the first constrained/referenced column pair of each
	// constraint is reported.
	DiscoverForeignKeys(ctx context.Context, schemaName, tableName string) ([]ForeignKeyMetadata, error)
}

// TableProfiler runs the statistical profiling queries for one table.
// The round-trip contract is fixed: CountRows is one statement,
// AggregateColumnStats is exactly one statement covering every column,
// and SampleRows is exactly one statement, regardless of column count.
type TableProfiler interface {
	// CountRows returns the total row count of a table.
	CountRows(ctx context.Context, schemaName, tableName string) (int64, error)

	// AggregateColumnStats computes, in a single statement, the null
	// count and distinct count for every column, plus min/max/mean for
	// columns flagged numeric.
	AggregateColumnStats(ctx context.Context, schemaName, tableName string, columns []ColumnSpec) (map[string]ColumnAggregate, error)

	// SampleRows returns, in a single statement, stringified values from
	// the first limit rows, keyed by column name. NULLs are skipped, so
	// a column may carry fewer than limit samples.
	SampleRows(ctx context.Context, schemaName, tableName string, columns []string, limit int) (map[string][]string, error)
}

// Connector is the full per-dialect surface the extractor consumes.
// Each Connector owns an independent connection handle; the extractor
// opens one per worker so no introspection state is shared across
// goroutines. Callers must Close it when done.
type Connector interface {
	SchemaDiscoverer
	TableProfiler

	// QuoteIdentifier safely quotes a table or column name using the
	// dialect's quoting rules.
	QuoteIdentifier(name string) string

	// Close releases the connection handle.
	Close() error
}
