package enrich

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens-engine/pkg/models"
)

func TestComputeSchemaHash_StableAcrossMapOrder(t *testing.T) {
	a := models.Schema{"users": {}, "orders": {}, "products": {}}
	b := models.Schema{"products": {}, "users": {}, "orders": {}}

	assert.Equal(t, ComputeSchemaHash(a), ComputeSchemaHash(b))
}

func TestComputeSchemaHash_ChangesWithTableSet(t *testing.T) {
	a := models.Schema{"users": {}}
	b := models.Schema{"users": {}, "orders": {}}

	assert.NotEqual(t, ComputeSchemaHash(a), ComputeSchemaHash(b))
}

func TestComputeSchemaHash_IgnoresColumnChanges(t *testing.T) {
	a := models.Schema{"users": {Columns: map[string]*models.ColumnMetadata{"id": {Name: "id"}}}}
	b := models.Schema{"users": {Columns: map[string]*models.ColumnMetadata{"email": {Name: "email"}}}}

	// Only the table-name set participates in the hash.
	assert.Equal(t, ComputeSchemaHash(a), ComputeSchemaHash(b))
}

func TestCacheStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema_cache.json")
	store := NewCacheStore(path, nil)

	schema := models.Schema{
		"users": {
			TableName: "users",
			RowCount:  3,
			Columns: map[string]*models.ColumnMetadata{
				"id": {Name: "id", OriginalType: "INTEGER"},
			},
		},
	}

	require.NoError(t, store.Put("hash-1", schema))

	got, ok := store.Get("hash-1")
	require.True(t, ok)
	require.Contains(t, got, "users")
	assert.Equal(t, int64(3), got["users"].RowCount)
	assert.Equal(t, "INTEGER", got["users"].Columns["id"].OriginalType)
}

func TestCacheStore_HashMismatchMisses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema_cache.json")
	store := NewCacheStore(path, nil)

	require.NoError(t, store.Put("hash-1", models.Schema{"users": {TableName: "users"}}))

	_, ok := store.Get("hash-2")
	assert.False(t, ok)
}

func TestCacheStore_MissingFileMisses(t *testing.T) {
	store := NewCacheStore(filepath.Join(t.TempDir(), "nope.json"), nil)

	_, ok := store.Get("any")
	assert.False(t, ok)
}

func TestCacheStore_CorruptFileMisses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewCacheStore(path, nil)
	_, ok := store.Get("any")
	assert.False(t, ok)
}

func TestCacheStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	store := NewCacheStore(path, nil)

	require.NoError(t, store.Put("h", models.Schema{}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
