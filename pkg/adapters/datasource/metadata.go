package datasource

import (
	"fmt"
	"strconv"
	"time"
)

// TableMetadata represents a discovered user table.
type TableMetadata struct {
	SchemaName string
	TableName  string
}

// ColumnMetadata represents a discovered column.
type ColumnMetadata struct {
	ColumnName      string
	DataType        string
	IsNullable      bool
	IsPrimaryKey    bool
	IsUnique        bool
	OrdinalPosition int
}

// ForeignKeyMetadata represents a discovered foreign key constraint,
// reduced to its first constrained/referenced column pair.
type ForeignKeyMetadata struct {
	ConstraintName string
	SourceColumn   string
	TargetTable    string
	TargetColumn   string
}

// ColumnSpec tells the profiler which columns to aggregate and which of
// them should get numeric min/max/mean expressions.
type ColumnSpec struct {
	Name    string
	Numeric bool
}

// ColumnAggregate holds one column's share of the batched aggregate
// statement. Min/Max/Mean stay nil for non-numeric columns and for
// all-NULL numeric columns.
type ColumnAggregate struct {
	NullCount     int64
	DistinctCount int64
	Min           *float64
	Max           *float64
	Mean          *float64
}

// FormatValue renders a driver-returned value as a sample string.
// Returns false for NULLs, which are skipped from samples.
func FormatValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case []byte:
		return string(val), true
	case string:
		return val, true
	case time.Time:
		return val.Format(time.RFC3339), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}
