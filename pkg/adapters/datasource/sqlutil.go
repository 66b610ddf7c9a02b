package datasource

import (
	"database/sql"
	"fmt"
)

// ScanSampleRows collects stringified sample values per column from a
// database/sql result set. NULLs are skipped. Shared by the adapters
// built on database/sql; the pgx adapter has its own equivalent.
func ScanSampleRows(rows *sql.Rows, columns []string) (map[string][]string, error) {
	samples := make(map[string][]string, len(columns))
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		for i, col := range columns {
			if s, ok := FormatValue(values[i]); ok {
				samples[col] = append(samples[col], s)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}
	return samples, nil
}
