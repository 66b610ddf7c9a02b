package datasource

import (
	"context"
)

// MockConnector is a configurable mock for testing schema discovery and
// profiling. Set the function fields to control behavior in tests.
type MockConnector struct {
	DiscoverTablesFunc      func(ctx context.Context) ([]TableMetadata, error)
	DiscoverColumnsFunc     func(ctx context.Context, schemaName, tableName string) ([]ColumnMetadata, error)
	DiscoverForeignKeysFunc func(ctx context.Context, schemaName, tableName string) ([]ForeignKeyMetadata, error)
	CountRowsFunc           func(ctx context.Context, schemaName, tableName string) (int64, error)
	AggregateFunc           func(ctx context.Context, schemaName, tableName string, columns []ColumnSpec) (map[string]ColumnAggregate, error)
	SampleRowsFunc          func(ctx context.Context, schemaName, tableName string, columns []string, limit int) (map[string][]string, error)

	// Call tracking for verification
	CountRowsCalls  int
	AggregateCalls  int
	SampleRowsCalls int
	CloseCalls      int
}

// NewMockConnector creates a new mock connector.
func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) DiscoverTables(ctx context.Context) ([]TableMetadata, error) {
	if m.DiscoverTablesFunc != nil {
		return m.DiscoverTablesFunc(ctx)
	}
	return nil, nil
}

func (m *MockConnector) DiscoverColumns(ctx context.Context, schemaName, tableName string) ([]ColumnMetadata, error) {
	if m.DiscoverColumnsFunc != nil {
		return m.DiscoverColumnsFunc(ctx, schemaName, tableName)
	}
	return nil, nil
}

func (m *MockConnector) DiscoverForeignKeys(ctx context.Context, schemaName, tableName string) ([]ForeignKeyMetadata, error) {
	if m.DiscoverForeignKeysFunc != nil {
		return m.DiscoverForeignKeysFunc(ctx, schemaName, tableName)
	}
	return nil, nil
}

func (m *MockConnector) CountRows(ctx context.Context, schemaName, tableName string) (int64, error) {
	m.CountRowsCalls++
	if m.CountRowsFunc != nil {
		return m.CountRowsFunc(ctx, schemaName, tableName)
	}
	return 0, nil
}

func (m *MockConnector) AggregateColumnStats(ctx context.Context, schemaName, tableName string, columns []ColumnSpec) (map[string]ColumnAggregate, error) {
	m.AggregateCalls++
	if m.AggregateFunc != nil {
		return m.AggregateFunc(ctx, schemaName, tableName, columns)
	}
	return map[string]ColumnAggregate{}, nil
}

func (m *MockConnector) SampleRows(ctx context.Context, schemaName, tableName string, columns []string, limit int) (map[string][]string, error) {
	m.SampleRowsCalls++
	if m.SampleRowsFunc != nil {
		return m.SampleRowsFunc(ctx, schemaName, tableName, columns, limit)
	}
	return map[string][]string{}, nil
}

func (m *MockConnector) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (m *MockConnector) Close() error {
	m.CloseCalls++
	return nil
}

// Ensure MockConnector implements Connector at compile time.
var _ Connector = (*MockConnector)(nil)
