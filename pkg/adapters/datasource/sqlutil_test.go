package datasource

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSampleRows_SkipsNulls(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockRows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "alice").
		AddRow(nil, "bob").
		AddRow(int64(3), nil)
	mock.ExpectQuery("SELECT").WillReturnRows(mockRows)

	rows, err := db.Query(`SELECT "id", "name" FROM "users" LIMIT 3`)
	require.NoError(t, err)
	defer rows.Close()

	samples, err := ScanSampleRows(rows, []string{"id", "name"})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3"}, samples["id"])
	assert.Equal(t, []string{"alice", "bob"}, samples["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		want  string
		ok    bool
	}{
		{name: "nil", input: nil, want: "", ok: false},
		{name: "bytes", input: []byte("raw"), want: "raw", ok: true},
		{name: "string", input: "hello", want: "hello", ok: true},
		{name: "int64", input: int64(42), want: "42", ok: true},
		{name: "float64", input: 3.5, want: "3.5", ok: true},
		{name: "bool", input: true, want: "true", ok: true},
		{name: "time", input: ts, want: "2024-03-01T12:30:00Z", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatValue(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
